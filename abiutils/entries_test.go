package abiutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// simpleTokenABI is a trimmed ERC-20 style ABI exercising every tagged entry shape.
const simpleTokenABI = `[
	{"type": "constructor", "inputs": [{"name": "supply", "type": "uint256"}], "stateMutability": "nonpayable"},
	{"type": "fallback", "stateMutability": "payable"},
	{"type": "receive", "stateMutability": "payable"},
	{"type": "function", "name": "transfer", "inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}], "outputs": [{"type": "bool"}], "stateMutability": "nonpayable"},
	{"type": "function", "name": "balanceOf", "inputs": [{"name": "owner", "type": "address"}], "outputs": [{"type": "uint256"}], "stateMutability": "view"},
	{"type": "event", "name": "Transfer", "inputs": [{"name": "from", "type": "address", "indexed": true}, {"name": "to", "type": "address", "indexed": true}, {"name": "value", "type": "uint256"}]},
	{"type": "error", "name": "InsufficientBalance", "inputs": [{"name": "needed", "type": "uint256"}]},
	{"type": "struct", "name": "Checkpoint", "members": [{"name": "block", "type": "uint32"}, {"name": "votes", "type": "uint224"}]}
]`

// TestParseABI verifies a full ABI decodes into the expected tagged entry sequence with the expected
// selectors and signatures.
func TestParseABI(t *testing.T) {
	entries, err := ParseABI([]byte(simpleTokenABI))
	assert.NoError(t, err)
	assert.EqualValues(t, 8, len(entries))

	constructor, ok := entries[0].(*ConstructorABI)
	assert.True(t, ok)
	assert.EqualValues(t, "constructor(uint256)", constructor.Selector())
	assert.False(t, constructor.IsPayable())

	fallback, ok := entries[1].(*FallbackABI)
	assert.True(t, ok)
	assert.EqualValues(t, "fallback()", fallback.Selector())

	receive, ok := entries[2].(*ReceiveABI)
	assert.True(t, ok)
	assert.EqualValues(t, "receive()", receive.Selector())

	transfer, ok := entries[3].(*MethodABI)
	assert.True(t, ok)
	assert.EqualValues(t, "transfer(address,uint256)", transfer.Selector())
	assert.EqualValues(t, "transfer(address to, uint256 value) -> bool", transfer.Signature())
	assert.True(t, transfer.IsStateful())

	balanceOf, ok := entries[4].(*MethodABI)
	assert.True(t, ok)
	assert.False(t, balanceOf.IsStateful())

	event, ok := entries[5].(*EventABI)
	assert.True(t, ok)
	assert.EqualValues(t, "Transfer(address,address,uint256)", event.Selector())
	assert.EqualValues(t, "Transfer(address indexed from, address indexed to, uint256 value)", event.Signature())

	abiError, ok := entries[6].(*ErrorABI)
	assert.True(t, ok)
	assert.EqualValues(t, "InsufficientBalance(uint256)", abiError.Selector())

	structDef, ok := entries[7].(*StructABI)
	assert.True(t, ok)
	assert.EqualValues(t, "Checkpoint(uint32,uint224)", structDef.Selector())
}

// TestParseABIDefaultType verifies an entry with no type discriminator decodes as a method, matching
// older compiler output which omitted it.
func TestParseABIDefaultType(t *testing.T) {
	entries, err := ParseABI([]byte(`[{"name": "legacy", "inputs": []}]`))
	assert.NoError(t, err)
	assert.EqualValues(t, 1, len(entries))

	method, ok := entries[0].(*MethodABI)
	assert.True(t, ok)
	assert.EqualValues(t, "legacy", method.Name)
}

// TestParseABIUnprocessed verifies unrecognized entry types pass through rather than failing the decode.
func TestParseABIUnprocessed(t *testing.T) {
	entries, err := ParseABI([]byte(`[{"type": "verbatim", "data": "0x1234"}]`))
	assert.NoError(t, err)
	assert.EqualValues(t, 1, len(entries))

	unprocessed, ok := entries[0].(*UnprocessedABI)
	assert.True(t, ok)
	assert.EqualValues(t, "verbatim", unprocessed.EntryType())
	assert.EqualValues(t, "", unprocessed.Selector())
}

// TestParseABIMalformed verifies a non-array document fails the decode.
func TestParseABIMalformed(t *testing.T) {
	_, err := ParseABI([]byte(`{"type": "function"}`))
	assert.Error(t, err)
}

// TestEntryName verifies names resolve for named entry kinds and stay empty for unnamed ones.
func TestEntryName(t *testing.T) {
	assert.EqualValues(t, "transfer", EntryName(&MethodABI{Name: "transfer"}))
	assert.EqualValues(t, "Transfer", EntryName(&EventABI{Name: "Transfer"}))
	assert.EqualValues(t, "Panic", EntryName(&ErrorABI{Name: "Panic"}))
	assert.EqualValues(t, "Checkpoint", EntryName(&StructABI{Name: "Checkpoint"}))
	assert.EqualValues(t, "", EntryName(&ConstructorABI{}))
	assert.EqualValues(t, "", EntryName(&FallbackABI{}))
}
