// Package abiutils models contract ABI entries and derives their canonical identity: canonical type
// strings, selector strings, and the keccak256-based identifiers used for call dispatch and event log
// topics. It also provides selector-aware lookup over entry lists and event topic encoding.
package abiutils

import (
	"encoding/json"
	"strings"
)

// ABIType describes a single input, output, or member type within an ABI entry.
type ABIType struct {
	// Name is the parameter name, if any. Tuple component types may be unnamed.
	Name string `json:"name,omitempty"`

	// Type is the textual ABI type, e.g. "uint256", "address[]", or "tuple[2]". It is empty when the
	// entry uses the nested grammar continuation form instead, in which case NestedType is set.
	Type string `json:"type,omitempty"`

	// NestedType carries the grammar continuation form, where the type field is itself a nested ABIType
	// rather than a string. Canonical type resolution recurses through it.
	NestedType *ABIType `json:"-"`

	// Components describes the member types of a tuple. A type is a tuple when its textual type starts
	// with "tuple" and components are present.
	Components []ABIType `json:"components,omitempty"`

	// Indexed marks an event input as included in log topics rather than log data. Only event inputs
	// carry this field.
	Indexed *bool `json:"indexed,omitempty"`

	// InternalType is the compiler's internal name for the type, e.g. a struct name.
	InternalType string `json:"internalType,omitempty"`
}

// UnmarshalJSON decodes an ABIType, accepting both a textual type and the nested grammar continuation
// form for the type field.
func (t *ABIType) UnmarshalJSON(data []byte) error {
	type rawABIType struct {
		Name         string          `json:"name"`
		Type         json.RawMessage `json:"type"`
		Components   []ABIType       `json:"components"`
		Indexed      *bool           `json:"indexed"`
		InternalType string          `json:"internalType"`
	}
	var raw rawABIType
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = ABIType{
		Name:         raw.Name,
		Components:   raw.Components,
		Indexed:      raw.Indexed,
		InternalType: raw.InternalType,
	}
	if len(raw.Type) == 0 {
		return nil
	}
	trimmed := strings.TrimSpace(string(raw.Type))
	if strings.HasPrefix(trimmed, "{") {
		t.NestedType = &ABIType{}
		return json.Unmarshal(raw.Type, t.NestedType)
	}
	return json.Unmarshal(raw.Type, &t.Type)
}

// CanonicalType returns the type in its virtual-machine encoding form: leaf types return their textual
// form, while tuples flatten to a parenthesized list of their canonical component types with any array
// suffix appended after the closing parenthesis, e.g. "(address,uint256)[2]".
func (t ABIType) CanonicalType() string {
	if t.NestedType != nil {
		return t.NestedType.CanonicalType()
	}
	if t.IsTuple() {
		componentTypes := make([]string, len(t.Components))
		for i, component := range t.Components {
			componentTypes[i] = component.CanonicalType()
		}
		return "(" + strings.Join(componentTypes, ",") + ")" + strings.TrimPrefix(t.Type, "tuple")
	}
	return t.Type
}

// IsTuple reports whether the type is a tuple (textual type starting with "tuple" and components present).
func (t ABIType) IsTuple() bool {
	return strings.HasPrefix(t.Type, "tuple") && t.Components != nil
}

// IsIndexed reports whether the type describes an indexed event input.
func (t ABIType) IsIndexed() bool {
	return t.Indexed != nil && *t.Indexed
}

// canonicalTypes joins the canonical types of the given parameters with commas, the form selectors use.
func canonicalTypes(types []ABIType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.CanonicalType()
	}
	return strings.Join(parts, ",")
}
