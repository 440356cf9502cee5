package abiutils

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// methodList builds a small method list with an overloaded name for lookup tests.
func methodList() *ABIList {
	return NewABIList([]ABIEntry{
		&MethodABI{Name: "transfer", Inputs: []ABIType{{Name: "to", Type: "address"}, {Name: "value", Type: "uint256"}}},
		&MethodABI{Name: "balanceOf", Inputs: []ABIType{{Name: "owner", Type: "address"}}},
		&MethodABI{Name: "transfer", Inputs: []ABIType{{Name: "to", Type: "address"}}},
	}, ShortIdentifierSize)
}

// TestABIListPositional verifies index and slice lookups with their bounds errors.
func TestABIListPositional(t *testing.T) {
	list := methodList()
	assert.EqualValues(t, 3, list.Len())

	entry, err := list.Get(ByIndex(1))
	assert.NoError(t, err)
	assert.EqualValues(t, "balanceOf", EntryName(entry))

	matches, err := list.Lookup(BySlice(0, 2))
	assert.NoError(t, err)
	assert.EqualValues(t, 2, len(matches))

	_, err = list.Lookup(ByIndex(3))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = list.Lookup(ByIndex(-1))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = list.Lookup(BySlice(2, 5))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

// TestABIListByName verifies name lookups resolve the first declared entry for overloads.
func TestABIListByName(t *testing.T) {
	list := methodList()

	entry, err := list.Get(ByName("transfer"))
	assert.NoError(t, err)
	method, ok := entry.(*MethodABI)
	assert.True(t, ok)
	assert.EqualValues(t, 2, len(method.Inputs))

	_, err = list.Get(ByName("approve"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestABIListBySignature verifies signature lookups disambiguate overloads.
func TestABIListBySignature(t *testing.T) {
	list := methodList()

	entry, err := list.Get(BySignature("transfer(address)"))
	assert.NoError(t, err)
	method := entry.(*MethodABI)
	assert.EqualValues(t, 1, len(method.Inputs))

	_, err = list.Get(BySignature("transfer(bool)"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestABIListByHash verifies hashed lookups compare the list's identifier prefix, accepting both
// truncated and full-length hashes.
func TestABIListByHash(t *testing.T) {
	list := methodList()

	entry, err := list.Get(ByHash(hexutil.MustDecode("0xa9059cbb")))
	assert.NoError(t, err)
	assert.EqualValues(t, "transfer(address,uint256)", entry.Selector())

	// A full 32-byte hash matches on its leading bytes in a short-identifier list.
	full := SelectorHash("balanceOf(address)")
	entry, err = list.Get(ByHash(full))
	assert.NoError(t, err)
	assert.EqualValues(t, "balanceOf", EntryName(entry))

	_, err = list.Get(ByHash(hexutil.MustDecode("0xdeadbeef")))
	assert.True(t, errors.Is(err, ErrNotFound))

	// An empty hash must not match every entry via a zero-length prefix compare.
	_, err = list.Get(ByHash(nil))
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = list.GetString("0x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestABIListByEntry verifies locating a list's equivalent of an entry from another source.
func TestABIListByEntry(t *testing.T) {
	list := methodList()

	parsed, err := ParseMethodSignature("transfer(address to, uint256 value)")
	assert.NoError(t, err)

	entry, err := list.Get(ByEntry(parsed))
	assert.NoError(t, err)
	assert.EqualValues(t, "transfer(address,uint256)", entry.Selector())
}

// TestABIListStringKeys verifies untyped string keys dispatch on their shape.
func TestABIListStringKeys(t *testing.T) {
	list := methodList()

	entry, err := list.GetString("balanceOf")
	assert.NoError(t, err)
	assert.EqualValues(t, "balanceOf", EntryName(entry))

	entry, err = list.GetString("transfer(address)")
	assert.NoError(t, err)
	assert.EqualValues(t, "transfer(address)", entry.Selector())

	entry, err = list.GetString("0xa9059cbb")
	assert.NoError(t, err)
	assert.EqualValues(t, "transfer(address,uint256)", entry.Selector())
}

// TestABIListContains verifies membership checks across key kinds.
func TestABIListContains(t *testing.T) {
	list := methodList()
	assert.True(t, list.Contains(ByName("transfer")))
	assert.True(t, list.Contains(ByHash(hexutil.MustDecode("0xa9059cbb"))))
	assert.False(t, list.Contains(ByName("approve")))
	assert.False(t, list.Contains(ByIndex(10)))
}

// TestABIListEventIdentifiers verifies event lists resolve by their full 32-byte topic hash.
func TestABIListEventIdentifiers(t *testing.T) {
	indexed := true
	events := NewABIList([]ABIEntry{
		&EventABI{Name: "Transfer", Inputs: []ABIType{
			{Name: "from", Type: "address", Indexed: &indexed},
			{Name: "to", Type: "address", Indexed: &indexed},
			{Name: "value", Type: "uint256"},
		}},
	}, LongIdentifierSize)

	topic := hexutil.MustDecode("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	entry, err := events.Get(ByHash(topic))
	assert.NoError(t, err)
	assert.EqualValues(t, "Transfer", EntryName(entry))
}
