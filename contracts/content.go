// Package contracts models compiled contract artifacts: the contract type container with its ABI,
// bytecode, source map, and AST payloads, the CBOR metadata trailer solc embeds in runtime bytecode,
// and the source correlator which resolves byte ranges and program counters back to named functions.
package contracts

import (
	"sort"
	"strings"
)

// Content is an ordered mapping of source line numbers to their text. Line numbers need not be
// contiguous; a Content holding only a function's lines keeps the original file numbering.
type Content struct {
	lines   map[int]string
	numbers []int
}

// NewContent builds a Content from a line-number-keyed map. Trailing blank lines are dropped, matching
// the way compilers terminate source ranges.
func NewContent(lines map[int]string) Content {
	numbers := make([]int, 0, len(lines))
	for number := range lines {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	// Walk backwards over the ordered lines to find the last one with real text.
	lastIndex := len(numbers) - 1
	for lastIndex >= 0 && strings.TrimSpace(lines[numbers[lastIndex]]) == "" {
		lastIndex--
	}
	numbers = numbers[:lastIndex+1]

	kept := make(map[int]string, len(numbers))
	for _, number := range numbers {
		kept[number] = lines[number]
	}
	return Content{lines: kept, numbers: numbers}
}

// ContentFromString builds a Content from raw source text, numbering lines from one.
func ContentFromString(text string) Content {
	lines := make(map[int]string)
	for i, line := range strings.Split(strings.TrimRight(text, "\n\r \t"), "\n") {
		lines[i+1] = line
	}
	return NewContent(lines)
}

// Lines returns the line numbers present, in ascending order.
func (c Content) Lines() []int {
	return c.numbers
}

// BeginLineno returns the first line number, or -1 when the content is empty.
func (c Content) BeginLineno() int {
	if len(c.numbers) == 0 {
		return -1
	}
	return c.numbers[0]
}

// EndLineno returns the last line number, or -1 when the content is empty.
func (c Content) EndLineno() int {
	if len(c.numbers) == 0 {
		return -1
	}
	return c.numbers[len(c.numbers)-1]
}

// Line returns the text of the given line number and whether it is present.
func (c Content) Line(lineno int) (string, bool) {
	line, ok := c.lines[lineno]
	return line, ok
}

// Slice returns the text of every present line with start <= lineno < stop, in order.
func (c Content) Slice(start int, stop int) []string {
	var lines []string
	for _, number := range c.numbers {
		if number >= stop {
			break
		}
		if number >= start {
			lines = append(lines, c.lines[number])
		}
	}
	return lines
}

// Len returns the number of lines held.
func (c Content) Len() int {
	return len(c.numbers)
}

// String renders the content as newline-joined text with a trailing newline, line numbers discarded.
func (c Content) String() string {
	if len(c.numbers) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, number := range c.numbers {
		builder.WriteString(c.lines[number])
		builder.WriteByte('\n')
	}
	return builder.String()
}
