package ast

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// object is a decoded JSON object which remembers the order its keys were declared in. Child node
// discovery walks attributes in declaration order, so the standard library's unordered maps are not
// enough on their own.
type object struct {
	keys   []string
	values map[string]any
}

// toMap flattens the object into a plain map, recursively converting nested objects.
func (o *object) toMap() map[string]any {
	result := make(map[string]any, len(o.keys))
	for _, key := range o.keys {
		if nested, ok := o.values[key].(*object); ok {
			result[key] = nested.toMap()
			continue
		}
		result[key] = o.values[key]
	}
	return result
}

// decodeValue decodes a single JSON value from the decoder's token stream. Objects become *object values,
// arrays become []any, and numbers are kept as json.Number to avoid lossy float conversion of large
// byte offsets.
func decodeValue(decoder *json.Decoder) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(decoder, token)
}

func decodeToken(decoder *json.Decoder, token json.Token) (any, error) {
	delim, ok := token.(json.Delim)
	if !ok {
		// Strings, json.Number, booleans and nulls decode as themselves.
		return token, nil
	}

	switch delim {
	case '{':
		obj := &object{values: make(map[string]any)}
		for decoder.More() {
			keyToken, err := decoder.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyToken.(string)
			if !ok {
				return nil, errors.Errorf("expected object key, got %v", keyToken)
			}
			value, err := decodeValue(decoder)
			if err != nil {
				return nil, err
			}
			obj.keys = append(obj.keys, key)
			obj.values[key] = value
		}
		// Consume the closing brace.
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		array := make([]any, 0)
		for decoder.More() {
			value, err := decodeValue(decoder)
			if err != nil {
				return nil, err
			}
			array = append(array, value)
		}
		// Consume the closing bracket.
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return array, nil
	default:
		return nil, errors.Errorf("unexpected delimiter %q", delim)
	}
}
