package abiutils

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	// ErrTopicEncoding indicates a topic value did not fit the ABI type of its indexed input.
	ErrTopicEncoding = errors.New("could not encode topic value")

	// ErrTypeGrammar indicates a canonical type failed ABI type grammar parsing.
	ErrTypeGrammar = errors.New("invalid ABI type")
)

// EncodeTopics builds the log-filter topic list for an event from a map of input names to filter values.
// A value may be a single scalar, a slice of scalars (matching any of them at that position), or absent,
// which leaves a nil wildcard at the position. The first topic is always the event's full selector hash.
// Trailing wildcards are stripped from the result; wildcards followed by a concrete topic are preserved
// as positional placeholders.
//
// Values for inputs of dynamically-sized type (strings, bytes, dynamic arrays) are tightly packed and
// keccak256-hashed, since that is what the virtual machine stores in the log header. All other values
// encode to their padded 32-byte word form.
func EncodeTopics(event *EventABI, values map[string]any) ([]any, error) {
	topics := []any{LongIdentifier(event)}

	for _, input := range event.Inputs {
		if !input.IsIndexed() {
			continue
		}

		value, ok := values[input.Name]
		if !ok || value == nil {
			topics = append(topics, nil)
			continue
		}

		// A slice value means "match any of these" at this position, unless the input itself is
		// array-typed, in which case the slice is the single value to encode.
		if alternatives, isList := alternativeValues(value); isList && !strings.HasSuffix(input.CanonicalType(), "]") {
			encoded := make([]string, len(alternatives))
			for i, alternative := range alternatives {
				topic, err := encodeTopicValue(input, alternative)
				if err != nil {
					return nil, err
				}
				encoded[i] = topic
			}
			topics = append(topics, encoded)
			continue
		}

		topic, err := encodeTopicValue(input, value)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}

	// Strip trailing wildcards; a wildcard with no following concrete topic filters nothing. The
	// selector topic is never nil, so the loop terminates.
	for len(topics) > 0 && topics[len(topics)-1] == nil {
		topics = topics[:len(topics)-1]
	}
	return topics, nil
}

// encodeTopicValue encodes a single filter value for an indexed input into its 32-byte topic hex form.
func encodeTopicValue(input ABIType, value any) (string, error) {
	abiType, err := gethType(input)
	if err != nil {
		return "", err
	}

	if requiresHashing(abiType) {
		packed, err := packedEncode(abiType, value)
		if err != nil {
			return "", errors.Wrapf(err, "input %q", input.Name)
		}
		return hexutil.Encode(crypto.Keccak256(packed)), nil
	}

	word, err := packWord(abiType, value)
	if err != nil {
		return "", errors.Wrapf(err, "input %q", input.Name)
	}
	return hexutil.Encode(word), nil
}

// gethType resolves an ABIType into go-ethereum's parsed type representation, carrying tuple components
// through recursively.
func gethType(t ABIType) (abi.Type, error) {
	if t.NestedType != nil {
		return gethType(*t.NestedType)
	}
	components := make([]abi.ArgumentMarshaling, len(t.Components))
	for i, component := range t.Components {
		components[i] = componentMarshaling(component, fmt.Sprintf("arg%d", i))
	}
	parsed, err := abi.NewType(t.Type, t.InternalType, components)
	if err != nil {
		return abi.Type{}, errors.Wrapf(ErrTypeGrammar, "%q: %v", t.Type, err)
	}
	return parsed, nil
}

// componentMarshaling converts a tuple component for go-ethereum's type parser, substituting a fallback
// name for unnamed components since the parser builds struct fields from them.
func componentMarshaling(t ABIType, fallbackName string) abi.ArgumentMarshaling {
	name := t.Name
	if name == "" {
		name = fallbackName
	}
	components := make([]abi.ArgumentMarshaling, len(t.Components))
	for i, component := range t.Components {
		components[i] = componentMarshaling(component, fmt.Sprintf("arg%d", i))
	}
	return abi.ArgumentMarshaling{
		Name:         name,
		Type:         t.Type,
		InternalType: t.InternalType,
		Components:   components,
		Indexed:      t.IsIndexed(),
	}
}

// requiresHashing reports whether indexed values of the given type are stored in topics as a hash of
// their encoding instead of as a padded word. This covers dynamically-sized types and all non-value
// composite types (arrays and tuples), per the virtual machine's log encoding rules.
func requiresHashing(t abi.Type) bool {
	switch t.T {
	case abi.SliceTy, abi.ArrayTy, abi.TupleTy, abi.StringTy, abi.BytesTy:
		return true
	default:
		return false
	}
}

// packWord canonically ABI-encodes a single static value into its left-padded 32-byte word.
func packWord(t abi.Type, value any) ([]byte, error) {
	coerced, err := coerceValue(t, value)
	if err != nil {
		return nil, err
	}
	packed, err := abi.Arguments{{Type: t}}.Pack(coerced)
	if err != nil {
		return nil, errors.Wrapf(ErrTopicEncoding, "%v", err)
	}
	return packed, nil
}

// packedEncode tightly encodes a value of the given type with no length prefixes or tail padding, the
// form hashed into a topic for non-word types.
func packedEncode(t abi.Type, value any) ([]byte, error) {
	switch t.T {
	case abi.StringTy:
		return stringBytes(value)
	case abi.BytesTy:
		b, err := coerceBytes(value)
		if err != nil {
			return nil, err
		}
		return b, nil
	case abi.SliceTy, abi.ArrayTy:
		elements, ok := sliceElements(value)
		if !ok {
			return nil, errors.Wrapf(ErrTopicEncoding, "expected a slice for type %v, got %T", t, value)
		}
		var packed []byte
		for _, element := range elements {
			encoded, err := packedElement(*t.Elem, element)
			if err != nil {
				return nil, err
			}
			packed = append(packed, encoded...)
		}
		return packed, nil
	case abi.TupleTy:
		return packedTuple(t, value)
	default:
		return packWord(t, value)
	}
}

// packedElement encodes one element of a packed composite: static elements become full words, dynamic
// elements recurse into packed form.
func packedElement(t abi.Type, value any) ([]byte, error) {
	if requiresHashing(t) {
		return packedEncode(t, value)
	}
	return packWord(t, value)
}

// packedTuple encodes a tuple value, accepting either a positional slice or a component-name-keyed map.
func packedTuple(t abi.Type, value any) ([]byte, error) {
	var fields []any
	switch typed := value.(type) {
	case map[string]any:
		for _, name := range t.TupleRawNames {
			field, ok := typed[name]
			if !ok {
				return nil, errors.Wrapf(ErrTopicEncoding, "tuple value is missing component %q", name)
			}
			fields = append(fields, field)
		}
	default:
		elements, ok := sliceElements(value)
		if !ok || len(elements) != len(t.TupleElems) {
			return nil, errors.Wrapf(ErrTopicEncoding, "expected %d tuple components, got %T", len(t.TupleElems), value)
		}
		fields = elements
	}

	var packed []byte
	for i, elem := range t.TupleElems {
		encoded, err := packedElement(*elem, fields[i])
		if err != nil {
			return nil, err
		}
		packed = append(packed, encoded...)
	}
	return packed, nil
}

// stringBytes resolves a string-typed filter value into the bytes which get hashed. Byte-like values
// pass through; anything else falls back to its hex text representation.
func stringBytes(value any) ([]byte, error) {
	switch typed := value.(type) {
	case string:
		return []byte(typed), nil
	case []byte:
		return typed, nil
	}
	if number, err := coerceBig(value); err == nil {
		return []byte(hexutil.EncodeBig(number)), nil
	}
	return nil, errors.Wrapf(ErrTopicEncoding, "cannot interpret %T as a string", value)
}

// coerceValue converts a filter value into the exact Go representation go-ethereum's packer expects for
// the given type.
func coerceValue(t abi.Type, value any) (any, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		number, err := coerceBig(value)
		if err != nil {
			return nil, err
		}
		return numberForType(t, number)
	case abi.BoolTy:
		b, ok := value.(bool)
		if !ok {
			return nil, errors.Wrapf(ErrTopicEncoding, "expected bool, got %T", value)
		}
		return b, nil
	case abi.AddressTy:
		return coerceAddress(value)
	case abi.FixedBytesTy:
		raw, err := coerceBytes(value)
		if err != nil {
			return nil, err
		}
		if len(raw) != t.Size {
			return nil, errors.Wrapf(ErrTopicEncoding, "expected %d bytes, got %d", t.Size, len(raw))
		}
		// Fixed bytes pack as array types, which cannot be built without reflection.
		array := reflect.New(t.GetType()).Elem()
		reflect.Copy(array, reflect.ValueOf(raw))
		return array.Interface(), nil
	case abi.StringTy:
		s, ok := value.(string)
		if !ok {
			return nil, errors.Wrapf(ErrTopicEncoding, "expected string, got %T", value)
		}
		return s, nil
	case abi.BytesTy:
		return coerceBytes(value)
	default:
		return nil, errors.Wrapf(ErrTopicEncoding, "unsupported type %v", t)
	}
}

// coerceBig converts the numeric value forms accepted by the encoder into a big integer.
func coerceBig(value any) (*big.Int, error) {
	switch typed := value.(type) {
	case *big.Int:
		return typed, nil
	case big.Int:
		return new(big.Int).Set(&typed), nil
	case *uint256.Int:
		return typed.ToBig(), nil
	case uint256.Int:
		return typed.ToBig(), nil
	case int:
		return big.NewInt(int64(typed)), nil
	case int8:
		return big.NewInt(int64(typed)), nil
	case int16:
		return big.NewInt(int64(typed)), nil
	case int32:
		return big.NewInt(int64(typed)), nil
	case int64:
		return big.NewInt(typed), nil
	case uint:
		return new(big.Int).SetUint64(uint64(typed)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(typed)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(typed)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(typed)), nil
	case uint64:
		return new(big.Int).SetUint64(typed), nil
	case float64:
		// JSON numbers decode as float64; only integral values are meaningful here.
		if typed != math.Trunc(typed) {
			return nil, errors.Wrapf(ErrTopicEncoding, "non-integral number %v", typed)
		}
		return big.NewInt(int64(typed)), nil
	case string:
		if strings.HasPrefix(typed, "0x") {
			number, err := hexutil.DecodeBig(typed)
			if err != nil {
				return nil, errors.Wrapf(ErrTopicEncoding, "invalid hex number %q", typed)
			}
			return number, nil
		}
		number, ok := new(big.Int).SetString(typed, 10)
		if !ok {
			return nil, errors.Wrapf(ErrTopicEncoding, "invalid decimal number %q", typed)
		}
		return number, nil
	default:
		return nil, errors.Wrapf(ErrTopicEncoding, "cannot interpret %T as a number", value)
	}
}

// numberForType narrows a big integer into the exact integer representation the packer expects for the
// type's bit width.
func numberForType(t abi.Type, number *big.Int) (any, error) {
	goType := t.GetType()
	if goType == reflect.TypeOf(&big.Int{}) {
		return number, nil
	}
	// Reflection conversion truncates silently, so bounds are checked against the type's bit width
	// before narrowing.
	switch goType.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !number.IsUint64() || number.BitLen() > goType.Bits() {
			return nil, errors.Wrapf(ErrTopicEncoding, "%v overflows %v", number, t)
		}
		return reflect.ValueOf(number.Uint64()).Convert(goType).Interface(), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !number.IsInt64() {
			return nil, errors.Wrapf(ErrTopicEncoding, "%v overflows %v", number, t)
		}
		value := number.Int64()
		if bits := goType.Bits(); value < -1<<(bits-1) || value > 1<<(bits-1)-1 {
			return nil, errors.Wrapf(ErrTopicEncoding, "%v overflows %v", number, t)
		}
		return reflect.ValueOf(value).Convert(goType).Interface(), nil
	default:
		return nil, errors.Wrapf(ErrTopicEncoding, "unsupported numeric representation %v", goType)
	}
}

// coerceAddress converts the accepted address value forms into a common.Address.
func coerceAddress(value any) (common.Address, error) {
	switch typed := value.(type) {
	case common.Address:
		return typed, nil
	case *common.Address:
		return *typed, nil
	case [20]byte:
		return common.Address(typed), nil
	case []byte:
		if len(typed) == common.AddressLength {
			return common.BytesToAddress(typed), nil
		}
	case string:
		if common.IsHexAddress(typed) {
			return common.HexToAddress(typed), nil
		}
	}
	return common.Address{}, errors.Wrapf(ErrTopicEncoding, "cannot interpret %T as an address", value)
}

// coerceBytes converts the accepted byte-like value forms into a byte slice. Strings with a hex prefix
// decode as hex, anything else passes through as raw bytes.
func coerceBytes(value any) ([]byte, error) {
	switch typed := value.(type) {
	case []byte:
		return typed, nil
	case common.Hash:
		return typed.Bytes(), nil
	case common.Address:
		return typed.Bytes(), nil
	case string:
		if strings.HasPrefix(typed, "0x") {
			decoded, err := hexutil.Decode(typed)
			if err != nil {
				return nil, errors.Wrapf(ErrTopicEncoding, "invalid hex string %q", typed)
			}
			return decoded, nil
		}
		return []byte(typed), nil
	default:
		return nil, errors.Wrapf(ErrTopicEncoding, "cannot interpret %T as bytes", value)
	}
}

// alternativeValues reports whether a filter value is a list of alternatives for its position. Only
// slices qualify: Go array values such as common.Address and common.Hash are single scalar word forms
// and must not be flattened into per-element alternatives.
func alternativeValues(value any) ([]any, bool) {
	if _, isBytes := value.([]byte); isBytes {
		return nil, false
	}
	reflected := reflect.ValueOf(value)
	if !reflected.IsValid() || reflected.Kind() != reflect.Slice {
		return nil, false
	}
	elements := make([]any, reflected.Len())
	for i := range elements {
		elements[i] = reflected.Index(i).Interface()
	}
	return elements, true
}

// sliceElements flattens a slice or array value of any element type into []any. Byte slices and strings
// are not treated as element lists.
func sliceElements(value any) ([]any, bool) {
	if _, isBytes := value.([]byte); isBytes {
		return nil, false
	}
	reflected := reflect.ValueOf(value)
	if !reflected.IsValid() || (reflected.Kind() != reflect.Slice && reflected.Kind() != reflect.Array) {
		return nil, false
	}
	elements := make([]any, reflected.Len())
	for i := range elements {
		elements[i] = reflected.Index(i).Interface()
	}
	return elements, true
}
