package abiutils

import (
	"strings"

	"github.com/pkg/errors"
)

// displayArgs renders parameters for display signatures: canonical type, then the literal word "indexed"
// for indexed event inputs, then the parameter name, each when present.
func displayArgs(args []ABIType, markIndexed bool) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		part := arg.CanonicalType()
		if markIndexed && arg.IsIndexed() {
			part += " indexed"
		}
		if arg.Name != "" {
			part += " " + arg.Name
		}
		parts[i] = part
	}
	return strings.Join(parts, ", ")
}

// displayOutputs renders a method's return types as a " -> " suffix, parenthesized when there are
// multiple outputs.
func displayOutputs(outputs []ABIType) string {
	if len(outputs) == 0 {
		return ""
	}
	if len(outputs) == 1 {
		return " -> " + displayArgs(outputs, false)
	}
	return " -> (" + displayArgs(outputs, false) + ")"
}

// ParseMethodSignature reconstructs a MethodABI from its display signature, e.g.
// "transfer(address to, uint256 value)". Outputs and state mutability are not recoverable from a
// signature and are left at their defaults.
func ParseMethodSignature(signature string) (*MethodABI, error) {
	name, inputs, err := parseSignature(signature, false)
	if err != nil {
		return nil, err
	}
	return &MethodABI{Name: name, Inputs: inputs}, nil
}

// ParseEventSignature reconstructs an EventABI from its display signature, e.g.
// "Transfer(address indexed from, address indexed to, uint256 value)".
func ParseEventSignature(signature string) (*EventABI, error) {
	name, inputs, err := parseSignature(signature, true)
	if err != nil {
		return nil, err
	}
	return &EventABI{Name: name, Inputs: inputs}, nil
}

// ParseErrorSignature reconstructs an ErrorABI from its display signature.
func ParseErrorSignature(signature string) (*ErrorABI, error) {
	name, inputs, err := parseSignature(signature, false)
	if err != nil {
		return nil, err
	}
	return &ErrorABI{Name: name, Inputs: inputs}, nil
}

// ParseStructSignature reconstructs a StructABI from its display signature, e.g.
// "Pair(address token, uint256 reserve)".
func ParseStructSignature(signature string) (*StructABI, error) {
	name, members, err := parseSignature(signature, false)
	if err != nil {
		return nil, err
	}
	return &StructABI{Name: name, Members: members}, nil
}

// parseSignature splits a display signature into its name and parameter list. Any " -> " output suffix
// is discarded.
func parseSignature(signature string, isEvent bool) (string, []ABIType, error) {
	signature = strings.TrimSpace(signature)
	if arrow := strings.Index(signature, " -> "); arrow != -1 {
		signature = signature[:arrow]
	}

	open := strings.Index(signature, "(")
	if open == -1 || !strings.HasSuffix(signature, ")") {
		return "", nil, errors.Errorf("signature %q is missing a parenthesized parameter list", signature)
	}
	name := strings.TrimSpace(signature[:open])
	if name == "" {
		return "", nil, errors.Errorf("signature %q has no name", signature)
	}

	var inputs []ABIType
	for _, rawArg := range splitArgs(signature[open+1 : len(signature)-1]) {
		arg, err := parseArg(rawArg, isEvent)
		if err != nil {
			return "", nil, err
		}
		inputs = append(inputs, arg)
	}
	return name, inputs, nil
}

// parseArg parses one parameter of the form "type [indexed] [name]".
func parseArg(rawArg string, isEvent bool) (ABIType, error) {
	fields := strings.Fields(rawArg)
	if len(fields) == 0 {
		return ABIType{}, errors.Errorf("empty parameter in signature")
	}

	arg := ABIType{Type: fields[0]}
	fields = fields[1:]
	if isEvent && len(fields) > 0 && fields[0] == "indexed" {
		indexed := true
		arg.Indexed = &indexed
		fields = fields[1:]
	}
	if len(fields) > 1 {
		return ABIType{}, errors.Errorf("could not parse parameter %q", rawArg)
	}
	if len(fields) == 1 {
		arg.Name = fields[0]
	}
	return arg, nil
}

// splitArgs splits a parameter list on top-level commas, leaving commas nested within tuple parentheses
// or array brackets intact.
func splitArgs(argList string) []string {
	argList = strings.TrimSpace(argList)
	if argList == "" {
		return nil
	}

	var (
		args  []string
		depth int
		start int
	)
	for i, r := range argList {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(argList[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(argList[start:]))
}
