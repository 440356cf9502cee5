package sourcemaps

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// ErrPCNotFound indicates a program counter lookup against a PCMap found no entry.
var ErrPCNotFound = errors.New("no entry for program counter")

// PCMapItem describes the source line information the compiler associated with one program counter position.
// Numeric fields are Unset when the compiler provided no line information for the position.
type PCMapItem struct {
	// LineStart is the one-indexed line on which the mapped source range begins.
	LineStart int

	// ColumnStart is the column at which the mapped source range begins.
	ColumnStart int

	// LineEnd is the line on which the mapped source range ends.
	LineEnd int

	// ColumnEnd is the column at which the mapped source range ends.
	ColumnEnd int

	// Dev is an optional developer annotation the compiler attached to this position, e.g. a revert reason hint.
	Dev string
}

// Location returns the item's line information as a 4-tuple of [lineStart, columnStart, lineEnd, columnEnd],
// with Unset standing in for any absent value. This is the query form consumed by AST line-span lookups.
func (i PCMapItem) Location() [4]int {
	return [4]int{i.LineStart, i.ColumnStart, i.LineEnd, i.ColumnEnd}
}

// PCMapValue is the raw encoded form of a single PCMap entry. Compilers emit one of three shapes for an entry:
// null, a 4-element array of nullable line/column integers, or an object carrying a `location` of the same
// array shape plus an optional `dev` annotation. All three normalize into this structure.
type PCMapValue struct {
	// Location holds the [lineStart, columnStart, lineEnd, columnEnd] span, with nil standing in for absent
	// elements. A nil slice means the compiler provided no location at all.
	Location []*int `json:"location"`

	// Dev is an optional developer annotation for the position.
	Dev *string `json:"dev,omitempty"`
}

// UnmarshalJSON decodes a raw PCMap entry, normalizing the array shorthand and null forms into the full
// object form.
func (v *PCMapValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = PCMapValue{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		v.Dev = nil
		return json.Unmarshal(data, &v.Location)
	}

	type rawPCMapValue PCMapValue
	var raw rawPCMapValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = PCMapValue(raw)
	return nil
}

// PCMap is a map of program counter positions to statements in the source code, keyed by the decimal string
// form of the program counter as emitted by the compiler.
type PCMap map[string]*PCMapValue

// Get performs a point lookup for the given program counter.
// Returns the raw entry, or ErrPCNotFound if the map holds no entry for the position.
func (m PCMap) Get(pc int) (*PCMapValue, error) {
	value, ok := m[strconv.Itoa(pc)]
	if !ok {
		return nil, errors.Wrapf(ErrPCNotFound, "pc %d", pc)
	}
	return value, nil
}

// Set assigns the raw entry for the given program counter, replacing any existing entry.
func (m PCMap) Set(pc int, value *PCMapValue) {
	m[strconv.Itoa(pc)] = value
}

// SetLocation assigns an entry for the given program counter using the 4-element array shorthand, applying
// the same normalization rule used during decoding.
func (m PCMap) SetLocation(pc int, location []*int) {
	m[strconv.Itoa(pc)] = &PCMapValue{Location: location}
}

// Parse resolves the raw map into PCMapItem values keyed by integer program counter.
// Returns an error if a key is not a decimal integer or a location span does not have four elements.
func (m PCMap) Parse() (map[int]PCMapItem, error) {
	results := make(map[int]PCMapItem, len(m))
	for key, value := range m {
		pc, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Errorf("pc map key %q is not an integer", key)
		}

		item := PCMapItem{
			LineStart:   Unset,
			ColumnStart: Unset,
			LineEnd:     Unset,
			ColumnEnd:   Unset,
		}
		if value != nil {
			if value.Dev != nil {
				item.Dev = *value.Dev
			}
			if value.Location != nil {
				if len(value.Location) != 4 {
					return nil, errors.Errorf("pc map entry %d has a location with %d elements, expected 4", pc, len(value.Location))
				}
				item.LineStart = intOrUnset(value.Location[0])
				item.ColumnStart = intOrUnset(value.Location[1])
				item.LineEnd = intOrUnset(value.Location[2])
				item.ColumnEnd = intOrUnset(value.Location[3])
			}
		}
		results[pc] = item
	}
	return results, nil
}

// ParsePCMap decodes a raw JSON pc-map object and resolves it into PCMapItem values keyed by integer
// program counter.
func ParsePCMap(data []byte) (map[int]PCMapItem, error) {
	var m PCMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "could not decode pc map")
	}
	return m.Parse()
}

func intOrUnset(value *int) int {
	if value == nil {
		return Unset
	}
	return *value
}
