package abiutils

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const (
	// ShortIdentifierSize is the identifier truncation used for call dispatch (methods and errors).
	ShortIdentifierSize = 4

	// LongIdentifierSize is the full identifier size used for event log topics.
	LongIdentifierSize = 32
)

// SelectorHash returns the keccak256 hash of the UTF-8 bytes of a selector string. This is the hash from
// which dispatch identifiers and event topics are derived.
func SelectorHash(selector string) []byte {
	return crypto.Keccak256([]byte(selector))
}

// Identifier computes an entry's hashed identifier truncated to the given byte size and returns it as a
// 0x-prefixed hex string. Methods and errors conventionally use 4 bytes, events 32.
func Identifier(entry ABIEntry, size int) (string, error) {
	if size < 1 || size > LongIdentifierSize {
		return "", errors.Errorf("identifier size must be between 1 and %d bytes, got %d", LongIdentifierSize, size)
	}
	return hexutil.Encode(SelectorHash(entry.Selector())[:size]), nil
}

// ShortIdentifier computes an entry's 4-byte dispatch identifier as a 0x-prefixed hex string.
func ShortIdentifier(entry ABIEntry) string {
	return hexutil.Encode(SelectorHash(entry.Selector())[:ShortIdentifierSize])
}

// LongIdentifier computes an entry's full 32-byte identifier as a 0x-prefixed hex string. For events
// this is the value of the first log topic.
func LongIdentifier(entry ABIEntry) string {
	return hexutil.Encode(SelectorHash(entry.Selector()))
}
