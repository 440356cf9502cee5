package abiutils

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ABIEntry is a single entry of a contract's application binary interface. Entries are immutable once
// parsed; selectors and display signatures are always recomputed from the entry contents, never cached
// on the entry itself.
type ABIEntry interface {
	// EntryType returns the entry's JSON discriminator value, e.g. "function" or "event".
	EntryType() string

	// Selector returns the canonical selector string the entry's identifiers are hashed from. Entries
	// with no selector form (unprocessed entries) return an empty string.
	Selector() string

	// Signature returns the human-readable display signature, which unlike the selector includes
	// parameter names, indexed markers, and outputs.
	Signature() string
}

// ConstructorABI describes a contract constructor.
type ConstructorABI struct {
	Inputs          []ABIType `json:"inputs,omitempty"`
	StateMutability string    `json:"stateMutability,omitempty"`
}

func (c *ConstructorABI) EntryType() string {
	return "constructor"
}

func (c *ConstructorABI) Selector() string {
	return "constructor(" + canonicalTypes(c.Inputs) + ")"
}

func (c *ConstructorABI) Signature() string {
	return "constructor(" + displayArgs(c.Inputs, false) + ")"
}

// IsPayable reports whether the constructor accepts value on deployment.
func (c *ConstructorABI) IsPayable() bool {
	return c.StateMutability == "payable"
}

// FallbackABI describes a contract's fallback entry, invoked when no method matches the call data.
// It has no name, inputs, or outputs, so its selector is fixed.
type FallbackABI struct {
	StateMutability string `json:"stateMutability,omitempty"`
}

func (f *FallbackABI) EntryType() string {
	return "fallback"
}

func (f *FallbackABI) Selector() string {
	return "fallback()"
}

func (f *FallbackABI) Signature() string {
	return "fallback()"
}

// ReceiveABI describes a contract's receive entry, executed on plain value transfers with empty call data.
type ReceiveABI struct {
	StateMutability string `json:"stateMutability,omitempty"`
}

func (r *ReceiveABI) EntryType() string {
	return "receive"
}

func (r *ReceiveABI) Selector() string {
	return "receive()"
}

func (r *ReceiveABI) Signature() string {
	return "receive()"
}

// MethodABI describes a callable contract method.
type MethodABI struct {
	Name            string    `json:"name"`
	Inputs          []ABIType `json:"inputs,omitempty"`
	Outputs         []ABIType `json:"outputs,omitempty"`
	StateMutability string    `json:"stateMutability,omitempty"`
}

func (m *MethodABI) EntryType() string {
	return "function"
}

func (m *MethodABI) Selector() string {
	return m.Name + "(" + canonicalTypes(m.Inputs) + ")"
}

func (m *MethodABI) Signature() string {
	return m.Name + "(" + displayArgs(m.Inputs, false) + ")" + displayOutputs(m.Outputs)
}

// IsPayable reports whether the method accepts value.
func (m *MethodABI) IsPayable() bool {
	return m.StateMutability == "payable"
}

// IsStateful reports whether calling the method can mutate chain state.
func (m *MethodABI) IsStateful() bool {
	return m.StateMutability != "view" && m.StateMutability != "pure"
}

// EventABI describes an event a contract may emit.
type EventABI struct {
	Name      string    `json:"name"`
	Inputs    []ABIType `json:"inputs,omitempty"`
	Anonymous bool      `json:"anonymous,omitempty"`
}

func (e *EventABI) EntryType() string {
	return "event"
}

// Selector returns the event's canonical selector. Indexed flags affect the display signature only,
// never the selector.
func (e *EventABI) Selector() string {
	return e.Name + "(" + canonicalTypes(e.Inputs) + ")"
}

func (e *EventABI) Signature() string {
	return e.Name + "(" + displayArgs(e.Inputs, true) + ")"
}

// ErrorABI describes a custom error a contract may revert with.
type ErrorABI struct {
	Name   string    `json:"name"`
	Inputs []ABIType `json:"inputs,omitempty"`
}

func (e *ErrorABI) EntryType() string {
	return "error"
}

func (e *ErrorABI) Selector() string {
	return e.Name + "(" + canonicalTypes(e.Inputs) + ")"
}

func (e *ErrorABI) Signature() string {
	return e.Name + "(" + displayArgs(e.Inputs, false) + ")"
}

// StructABI describes a struct definition exported by the compiler.
type StructABI struct {
	Name    string    `json:"name"`
	Members []ABIType `json:"members,omitempty"`
}

func (s *StructABI) EntryType() string {
	return "struct"
}

func (s *StructABI) Selector() string {
	return s.Name + "(" + canonicalTypes(s.Members) + ")"
}

func (s *StructABI) Signature() string {
	return s.Name + "(" + displayArgs(s.Members, false) + ")"
}

// UnprocessedABI carries an entry whose type is not recognized, preserving its raw encoding so callers
// can still inspect or round-trip it.
type UnprocessedABI struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

func (u *UnprocessedABI) EntryType() string {
	return u.Type
}

func (u *UnprocessedABI) Selector() string {
	return ""
}

func (u *UnprocessedABI) Signature() string {
	return ""
}

// ParseABI decodes a standard JSON ABI array into its tagged entries. Entries with an unrecognized type
// pass through as UnprocessedABI values rather than failing the decode.
func ParseABI(data []byte) ([]ABIEntry, error) {
	var rawEntries []json.RawMessage
	if err := json.Unmarshal(data, &rawEntries); err != nil {
		return nil, errors.Wrap(err, "could not decode ABI")
	}

	entries := make([]ABIEntry, 0, len(rawEntries))
	for i, rawEntry := range rawEntries {
		// Peek at the discriminator to determine which entry shape to decode. Solidity omits the type
		// for methods in some older outputs, so it defaults to "function".
		discriminator := struct {
			Type string `json:"type"`
		}{Type: "function"}
		if err := json.Unmarshal(rawEntry, &discriminator); err != nil {
			return nil, errors.Wrapf(err, "could not decode ABI entry %d", i)
		}

		var (
			entry ABIEntry
			err   error
		)
		switch discriminator.Type {
		case "constructor":
			entry, err = decodeEntry(rawEntry, &ConstructorABI{})
		case "fallback":
			entry, err = decodeEntry(rawEntry, &FallbackABI{})
		case "receive":
			entry, err = decodeEntry(rawEntry, &ReceiveABI{})
		case "function":
			entry, err = decodeEntry(rawEntry, &MethodABI{})
		case "event":
			entry, err = decodeEntry(rawEntry, &EventABI{})
		case "error":
			entry, err = decodeEntry(rawEntry, &ErrorABI{})
		case "struct":
			entry, err = decodeEntry(rawEntry, &StructABI{})
		default:
			entry = &UnprocessedABI{Type: discriminator.Type, Raw: rawEntry}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not decode ABI entry %d", i)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry[T ABIEntry](data json.RawMessage, entry T) (ABIEntry, error) {
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// EntryName returns the declared name of an entry, or an empty string for unnamed entry kinds
// (constructor, fallback, receive, unprocessed).
func EntryName(entry ABIEntry) string {
	switch typed := entry.(type) {
	case *MethodABI:
		return typed.Name
	case *EventABI:
		return typed.Name
	case *ErrorABI:
		return typed.Name
	case *StructABI:
		return typed.Name
	default:
		return ""
	}
}
