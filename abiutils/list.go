package abiutils

import (
	"bytes"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound indicates no entry matched a name, signature, hash, or entry lookup key.
	ErrNotFound = errors.New("no matching ABI entry")

	// ErrIndexOutOfRange indicates a positional lookup key fell outside the list bounds.
	ErrIndexOutOfRange = errors.New("ABI entry index out of range")
)

// lookupKind discriminates the forms a LookupKey can take.
type lookupKind int

const (
	lookupIndex lookupKind = iota
	lookupSlice
	lookupName
	lookupSignature
	lookupHash
	lookupEntry
)

// LookupKey is a tagged lookup argument for ABIList. Construct one with ByIndex, BySlice, ByName,
// BySignature, ByHash, ByEntry, or KeyFromString.
type LookupKey struct {
	kind       lookupKind
	index, end int
	text       string
	hash       []byte
	entry      ABIEntry
}

// ByIndex keys an ordinary positional lookup.
func ByIndex(index int) LookupKey {
	return LookupKey{kind: lookupIndex, index: index}
}

// BySlice keys a positional range lookup over [start, end).
func BySlice(start int, end int) LookupKey {
	return LookupKey{kind: lookupSlice, index: start, end: end}
}

// ByName keys a lookup by declared entry name. When several entries share the name, the first declared
// entry wins; callers needing to disambiguate overloads should key by signature or hash instead.
func ByName(name string) LookupKey {
	return LookupKey{kind: lookupName, text: name}
}

// BySignature keys a lookup by exact selector string, e.g. "transfer(address,uint256)".
func BySignature(signature string) LookupKey {
	return LookupKey{kind: lookupSignature, text: signature}
}

// ByHash keys a lookup by hashed identifier bytes. The comparison covers the first N bytes of the
// computed identifier, where N is the smaller of the list's identifier size and the key length.
func ByHash(hash []byte) LookupKey {
	return LookupKey{kind: lookupHash, hash: hash}
}

// ByEntry keys a lookup by another entry's selector, locating this list's equivalent of it.
func ByEntry(entry ABIEntry) LookupKey {
	return LookupKey{kind: lookupEntry, entry: entry}
}

// KeyFromString builds a LookupKey from an untyped string key, dispatching on its shape: a string
// containing parentheses is a selector signature, a 0x-prefixed hex string is hashed identifier bytes,
// and anything else is a bare name.
func KeyFromString(key string) LookupKey {
	if strings.Contains(key, "(") {
		return BySignature(key)
	}
	if decoded, err := hexutil.Decode(key); err == nil {
		return ByHash(decoded)
	}
	return ByName(key)
}

// ABIList is a selector-aware view over a homogeneous sequence of ABI entries, adding selection by
// name, signature, and hashed identifier to ordinary positional access. Entries are treated as
// immutable; the identifier table is computed once, on first hashed lookup.
type ABIList struct {
	entries []ABIEntry

	// selectorIDSize is the identifier truncation compared during hashed lookups: 4 for method and
	// error lists, 32 for event lists.
	selectorIDSize int

	// identifiers lazily caches each entry's full selector hash, indexed alongside entries.
	identifiers [][]byte
}

// NewABIList wraps the given entries with the provided hashed-identifier size. A non-positive size
// defaults to the full 32 bytes.
func NewABIList(entries []ABIEntry, selectorIDSize int) *ABIList {
	if selectorIDSize <= 0 {
		selectorIDSize = LongIdentifierSize
	}
	return &ABIList{entries: entries, selectorIDSize: selectorIDSize}
}

// Len returns the number of entries in the list.
func (l *ABIList) Len() int {
	return len(l.entries)
}

// Entries returns the underlying entry sequence.
func (l *ABIList) Entries() []ABIEntry {
	return l.entries
}

// Lookup resolves a tagged key against the list. Scalar keys resolve to a single entry; slice keys may
// resolve to any number of entries. Positional misses return ErrIndexOutOfRange, all other misses
// return ErrNotFound.
func (l *ABIList) Lookup(key LookupKey) ([]ABIEntry, error) {
	switch key.kind {
	case lookupIndex:
		if key.index < 0 || key.index >= len(l.entries) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d with %d entries", key.index, len(l.entries))
		}
		return l.entries[key.index : key.index+1], nil
	case lookupSlice:
		if key.index < 0 || key.end > len(l.entries) || key.index > key.end {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "slice [%d:%d] with %d entries", key.index, key.end, len(l.entries))
		}
		return l.entries[key.index:key.end], nil
	case lookupSignature:
		for _, entry := range l.entries {
			if entry.Selector() == key.text {
				return []ABIEntry{entry}, nil
			}
		}
		return nil, errors.Wrapf(ErrNotFound, "signature %q", key.text)
	case lookupHash:
		// An empty hash would clamp the compared prefix to zero bytes and match any entry.
		if len(key.hash) == 0 {
			return nil, errors.Wrap(ErrNotFound, "empty identifier")
		}
		prefixSize := l.selectorIDSize
		if len(key.hash) < prefixSize {
			prefixSize = len(key.hash)
		}
		for i := range l.entries {
			if bytes.Equal(l.identifier(i)[:prefixSize], key.hash[:prefixSize]) {
				return []ABIEntry{l.entries[i]}, nil
			}
		}
		return nil, errors.Wrapf(ErrNotFound, "identifier %s", hexutil.Encode(key.hash))
	case lookupName:
		// Several entries may share a name (overloads); the first declared entry wins.
		for _, entry := range l.entries {
			if EntryName(entry) == key.text {
				return []ABIEntry{entry}, nil
			}
		}
		return nil, errors.Wrapf(ErrNotFound, "name %q", key.text)
	case lookupEntry:
		return l.Lookup(BySignature(key.entry.Selector()))
	default:
		return nil, errors.Wrap(ErrNotFound, "unsupported lookup key")
	}
}

// Get resolves a tagged key to a single entry, the first match for keys which can resolve to several.
func (l *ABIList) Get(key LookupKey) (ABIEntry, error) {
	matches, err := l.Lookup(key)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.Wrap(ErrNotFound, "empty lookup result")
	}
	return matches[0], nil
}

// GetString resolves an untyped string key, dispatching on its shape via KeyFromString.
func (l *ABIList) GetString(key string) (ABIEntry, error) {
	return l.Get(KeyFromString(key))
}

// Contains reports whether a key resolves to at least one entry.
func (l *ABIList) Contains(key LookupKey) bool {
	matches, err := l.Lookup(key)
	return err == nil && len(matches) > 0
}

// identifier returns the cached full selector hash for the entry at the given index, building the
// table on first use. Entries are immutable, so the table never needs invalidation.
func (l *ABIList) identifier(index int) []byte {
	if l.identifiers == nil {
		l.identifiers = make([][]byte, len(l.entries))
		for i, entry := range l.entries {
			l.identifiers[i] = SelectorHash(entry.Selector())
		}
	}
	return l.identifiers[index]
}
