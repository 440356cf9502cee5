package abiutils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// transferEvent builds the canonical ERC-20 Transfer event with its two indexed addresses.
func transferEvent() *EventABI {
	indexed := true
	return &EventABI{Name: "Transfer", Inputs: []ABIType{
		{Name: "from", Type: "address", Indexed: &indexed},
		{Name: "to", Type: "address", Indexed: &indexed},
		{Name: "value", Type: "uint256"},
	}}
}

const transferTopic0 = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// TestEncodeTopicsSelectorOnly verifies an empty filter reduces to just the selector topic, with the
// positional wildcards trimmed away.
func TestEncodeTopicsSelectorOnly(t *testing.T) {
	topics, err := EncodeTopics(transferEvent(), nil)
	assert.NoError(t, err)
	assert.EqualValues(t, []any{transferTopic0}, topics)
}

// TestEncodeTopicsAddress verifies address values pad into full words and trailing wildcards trim.
func TestEncodeTopicsAddress(t *testing.T) {
	topics, err := EncodeTopics(transferEvent(), map[string]any{
		"from": "0x0000000000000000000000000000000000000001",
	})
	assert.NoError(t, err)
	assert.EqualValues(t, []any{
		transferTopic0,
		"0x0000000000000000000000000000000000000000000000000000000000000001",
	}, topics)
}

// TestEncodeTopicsWildcardPlaceholder verifies a wildcard followed by a concrete topic is preserved as
// a positional nil.
func TestEncodeTopicsWildcardPlaceholder(t *testing.T) {
	recipient := common.HexToAddress("0x00000000219ab540356cBB839Cbe05303d7705Fa")
	topics, err := EncodeTopics(transferEvent(), map[string]any{"to": recipient})
	assert.NoError(t, err)
	assert.EqualValues(t, 3, len(topics))
	assert.EqualValues(t, transferTopic0, topics[0])
	assert.Nil(t, topics[1])
	assert.EqualValues(t, "0x00000000000000000000000000000000219ab540356cbb839cbe05303d7705fa", topics[2])
}

// TestEncodeTopicsArrayScalars verifies the array-backed scalar forms encode as single padded words
// rather than being flattened into per-element alternatives.
func TestEncodeTopicsArrayScalars(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000000001")
	topics, err := EncodeTopics(transferEvent(), map[string]any{"from": sender})
	assert.NoError(t, err)
	assert.EqualValues(t, []any{
		transferTopic0,
		"0x0000000000000000000000000000000000000000000000000000000000000001",
	}, topics)

	indexed := true
	event := &EventABI{Name: "Commit", Inputs: []ABIType{
		{Name: "digest", Type: "bytes32", Indexed: &indexed},
	}}
	digest := common.HexToHash("0x1100000000000000000000000000000000000000000000000000000000000022")
	topics, err = EncodeTopics(event, map[string]any{"digest": digest})
	assert.NoError(t, err)
	assert.EqualValues(t, digest.Hex(), topics[1])
}

// TestEncodeTopicsAlternatives verifies a slice value encodes each alternative at its position.
func TestEncodeTopicsAlternatives(t *testing.T) {
	topics, err := EncodeTopics(transferEvent(), map[string]any{
		"from": []any{
			"0x0000000000000000000000000000000000000001",
			"0x0000000000000000000000000000000000000002",
		},
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 2, len(topics))
	assert.EqualValues(t, []string{
		"0x0000000000000000000000000000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000000000000000000000000000002",
	}, topics[1])
}

// TestEncodeTopicsNumbers verifies the numeric value forms all land on the same padded word.
func TestEncodeTopicsNumbers(t *testing.T) {
	indexed := true
	event := &EventABI{Name: "Deposit", Inputs: []ABIType{
		{Name: "wad", Type: "uint256", Indexed: &indexed},
	}}
	expected := common.BigToHash(big.NewInt(1000)).Hex()

	for _, value := range []any{
		big.NewInt(1000),
		uint256.NewInt(1000),
		1000,
		uint64(1000),
		"1000",
		"0x3e8",
	} {
		topics, err := EncodeTopics(event, map[string]any{"wad": value})
		assert.NoError(t, err)
		assert.EqualValues(t, expected, topics[1])
	}
}

// TestEncodeTopicsString verifies indexed strings hash their UTF-8 bytes into the topic.
func TestEncodeTopicsString(t *testing.T) {
	indexed := true
	event := &EventABI{Name: "Log", Inputs: []ABIType{
		{Name: "message", Type: "string", Indexed: &indexed},
	}}

	topics, err := EncodeTopics(event, map[string]any{"message": "hello"})
	assert.NoError(t, err)
	assert.EqualValues(t, hexutil.Encode(crypto.Keccak256([]byte("hello"))), topics[1])
}

// TestEncodeTopicsBytes verifies indexed dynamic bytes hash their raw contents.
func TestEncodeTopicsBytes(t *testing.T) {
	indexed := true
	event := &EventABI{Name: "Data", Inputs: []ABIType{
		{Name: "payload", Type: "bytes", Indexed: &indexed},
	}}

	topics, err := EncodeTopics(event, map[string]any{"payload": "0x01020304"})
	assert.NoError(t, err)
	assert.EqualValues(t, hexutil.Encode(crypto.Keccak256([]byte{1, 2, 3, 4})), topics[1])
}

// TestEncodeTopicsDynamicArray verifies indexed arrays hash the tight concatenation of their element
// words, and that a slice value for an array-typed input is the value itself rather than alternatives.
func TestEncodeTopicsDynamicArray(t *testing.T) {
	indexed := true
	event := &EventABI{Name: "Batch", Inputs: []ABIType{
		{Name: "ids", Type: "uint256[]", Indexed: &indexed},
	}}

	packed := append(common.BigToHash(big.NewInt(1)).Bytes(), common.BigToHash(big.NewInt(2)).Bytes()...)
	topics, err := EncodeTopics(event, map[string]any{"ids": []any{1, 2}})
	assert.NoError(t, err)
	assert.EqualValues(t, hexutil.Encode(crypto.Keccak256(packed)), topics[1])
}

// TestEncodeTopicsFixedBytes verifies bytes32 values pack without hashing.
func TestEncodeTopicsFixedBytes(t *testing.T) {
	indexed := true
	event := &EventABI{Name: "Commit", Inputs: []ABIType{
		{Name: "digest", Type: "bytes32", Indexed: &indexed},
	}}
	digest := "0x1100000000000000000000000000000000000000000000000000000000000022"

	topics, err := EncodeTopics(event, map[string]any{"digest": digest})
	assert.NoError(t, err)
	assert.EqualValues(t, digest, topics[1])
}

// TestEncodeTopicsErrors verifies unencodable values and malformed types surface the right sentinels.
func TestEncodeTopicsErrors(t *testing.T) {
	indexed := true

	badValue := &EventABI{Name: "Deposit", Inputs: []ABIType{
		{Name: "wad", Type: "uint256", Indexed: &indexed},
	}}
	_, err := EncodeTopics(badValue, map[string]any{"wad": "not a number"})
	assert.True(t, errors.Is(err, ErrTopicEncoding))

	badType := &EventABI{Name: "Odd", Inputs: []ABIType{
		{Name: "x", Type: "uint257", Indexed: &indexed},
	}}
	_, err = EncodeTopics(badType, map[string]any{"x": 1})
	assert.True(t, errors.Is(err, ErrTypeGrammar))

	overflow := &EventABI{Name: "Small", Inputs: []ABIType{
		{Name: "n", Type: "uint8", Indexed: &indexed},
	}}
	_, err = EncodeTopics(overflow, map[string]any{"n": 300})
	assert.True(t, errors.Is(err, ErrTopicEncoding))
}
