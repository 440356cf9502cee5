package sourcemaps

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Reference: source mappings are decoded according to the rules specified in the solidity documentation:
// https://docs.soliditylang.org/en/latest/internals/source_mappings.html

// Unset is the sentinel value used for numeric source map fields which carry no value. The compiler emits `-1`
// on the wire for these fields (e.g. for code inserted during codegen which maps to no source range).
const Unset = -1

// JumpType describes the type of jump operation occurring within a SourceMapElement if the instruction
// is jumping.
type JumpType string

const (
	// JumpTypeNone indicates no jump occurred.
	JumpTypeNone JumpType = ""

	// JumpTypeIn indicates a jump into a function occurred.
	JumpTypeIn JumpType = "i"

	// JumpTypeOut indicates a return from a function occurred.
	JumpTypeOut JumpType = "o"

	// JumpTypeWithin indicates a jump occurred within the same function, e.g. for loops.
	JumpTypeWithin JumpType = "-"
)

// ErrMalformedSourceMap indicates a source map string could not be structurally decoded.
var ErrMalformedSourceMap = errors.New("malformed source map")

// SourceMap describes a list of elements which correspond to instruction indexes in compiled bytecode, describing
// which source files and the start/end range of the source code which the instruction maps to.
type SourceMap []SourceMapElement

// SourceMapElement describes an individual element of a source mapping output by the compiler.
// The index of each element in a source map corresponds to an instruction index (not to be mistaken with offset).
// It describes the portion of a source file the instruction references.
type SourceMapElement struct {
	// Index refers to the index of the SourceMapElement within its parent SourceMap. This is not actually a field
	// saved in the encoded form, but is provided for convenience so the user may remove SourceMapElement objects
	// during analysis.
	Index int

	// Offset refers to the byte offset which marks the start of the source range the element maps to, or Unset.
	Offset int

	// Length refers to the byte length of the source range the element maps to, or Unset.
	Length int

	// FileID refers to an identifier for the source file which houses the relevant source code, or Unset.
	FileID int

	// JumpType refers to the JumpType which provides information about any type of jump that occurred.
	JumpType JumpType
}

// ParseSourceMap takes a source mapping string returned by the compiler and parses it into an array of
// SourceMapElement objects. Elements are `;`-separated and fields within an element are `:`-separated. An empty
// field copies the previous element's value for that field and an entirely empty element copies the previous
// element whole. A fully elided first element is rejected, since there is no previous element to copy from.
// Returns the list of SourceMapElement objects, or an error if decoding fails.
func ParseSourceMap(sourceMapStr string) (SourceMap, error) {
	var sourceMap SourceMap

	// If our provided source map string is empty, there is no work to be done.
	if len(sourceMapStr) == 0 {
		return sourceMap, nil
	}

	// Separate all the individual source mapping elements.
	elements := strings.Split(strings.TrimSpace(sourceMapStr), ";")

	// The first element cannot be fully elided, as that would require copying an element which does not exist.
	if elements[0] == "" {
		return nil, errors.Wrap(ErrMalformedSourceMap, "first element is elided and has no previous element to copy")
	}

	// We use this variable to store "the previous element" because when an element or field is empty,
	// the value of the previous element is used.
	current := SourceMapElement{
		Index:    -1,
		Offset:   Unset,
		Length:   Unset,
		FileID:   Unset,
		JumpType: JumpTypeNone,
	}

	// Iterate over all elements split from the source mapping.
	for _, element := range elements {
		// Set the current index.
		current.Index = len(sourceMap)

		// If the element is empty, we use the previous one.
		if len(element) == 0 {
			sourceMap = append(sourceMap, current)
			continue
		}

		// Split the element fields apart and fill in any which are present.
		var err error
		fields := strings.Split(element, ":")

		// If the source range start offset exists, update our current element data.
		if len(fields) > 0 && fields[0] != "" {
			current.Offset, err = strconv.Atoi(fields[0])
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedSourceMap, "invalid offset %q", fields[0])
			}
		}

		// If the source range length exists, update our current element data.
		if len(fields) > 1 && fields[1] != "" {
			current.Length, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedSourceMap, "invalid length %q", fields[1])
			}
		}

		// If the source file identifier exists, update our current element data.
		if len(fields) > 2 && fields[2] != "" {
			current.FileID, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedSourceMap, "invalid file identifier %q", fields[2])
			}
		}

		// If the jump type information exists, update our current element data.
		// Any fields beyond the jump type (e.g. modifier call depth on solidity >0.6.x) are ignored.
		if len(fields) > 3 && fields[3] != "" {
			current.JumpType = JumpType(fields[3])
		}

		// Append our element to the map.
		sourceMap = append(sourceMap, current)
	}

	// Return the resulting map.
	return sourceMap, nil
}

// ParseSourceMapElement parses a single standalone source map element, such as the compact `src` descriptor
// attached to AST nodes (e.g. "95:42:0"). Missing or empty numeric fields resolve to Unset and the jump type
// defaults to JumpTypeNone, since there is no previous element to copy from.
func ParseSourceMapElement(elementStr string) (SourceMapElement, error) {
	sourceMap, err := ParseSourceMap(elementStr)
	if err != nil {
		return SourceMapElement{}, err
	}
	if len(sourceMap) != 1 {
		return SourceMapElement{}, errors.Wrapf(ErrMalformedSourceMap, "expected a single element, got %d", len(sourceMap))
	}
	return sourceMap[0], nil
}

// Serialize re-encodes the source map into its compact compressed string form, eliding any field which matches
// the previous element. Parsing the result yields the original element sequence, which makes this useful for
// verifying decoded compiler output.
func (s SourceMap) Serialize() string {
	var (
		builder strings.Builder
		prev    *SourceMapElement
	)
	for i := range s {
		if i > 0 {
			builder.WriteByte(';')
		}
		element := s[i]
		fields := element.encodedFields()

		// Determine the last field which differs from the previous element. Fields beyond it are elided
		// entirely, matching fields before it are left empty.
		lastDiff := -1
		if prev == nil {
			lastDiff = len(fields) - 1
		} else {
			prevFields := prev.encodedFields()
			for j := range fields {
				if fields[j] != prevFields[j] {
					lastDiff = j
				}
			}
		}
		for j := 0; j <= lastDiff; j++ {
			if j > 0 {
				builder.WriteByte(':')
			}
			if j < lastDiff && prev != nil && fields[j] == prev.encodedFields()[j] {
				continue
			}
			builder.WriteString(fields[j])
		}
		prev = &s[i]
	}
	return builder.String()
}

// encodedFields returns the wire representation of each field, with Unset encoded as "-1".
func (e SourceMapElement) encodedFields() [4]string {
	return [4]string{
		strconv.Itoa(e.Offset),
		strconv.Itoa(e.Length),
		strconv.Itoa(e.FileID),
		string(e.JumpType),
	}
}
