package contracts

import (
	"bytes"
	"fmt"

	"github.com/Masterminds/semver"
	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
)

// Metadata is the CBOR-encoded structure the Solidity compiler appends to runtime bytecode (unless
// explicitly directed not to), carrying the source hash and compiler version.
// Reference: https://docs.soliditylang.org/en/latest/metadata.html
type Metadata map[string]any

// metadataPrefixes are the byte patterns which begin the CBOR metadata trailer across compiler
// versions. The trailer sits at the end of the bytecode, followed only by its two-byte length.
var metadataPrefixes = [][]byte{
	{0xa1, 0x65, 'b', 'z', 'z', 'r', '0', 0x58, 0x20},      // solc <= 0.5.8
	{0xa2, 0x65, 'b', 'z', 'z', 'r', '0', 0x58, 0x20},      // solc >= 0.5.9
	{0xa2, 0x65, 'b', 'z', 'z', 'r', '1', 0x58, 0x20},      // solc >= 0.5.11
	{0xa2, 0x64, 'i', 'p', 'f', 's', 0x58, 0x22},           // solc >= 0.6.0
	{0xa3, 0x64, 'i', 'p', 'f', 's', 0x58, 0x22},           // solc >= 0.6.0 with experimental flag
}

// bytecodeHashKeys are the metadata keys which may carry the source hash, in the order probed.
var bytecodeHashKeys = [...]string{
	"bzzr0",
	"bzzr1",
	"ipfs",
}

// ExtractMetadata locates and decodes the metadata trailer within the given bytecode. Returns nil if no
// trailer is present or it fails to decode.
func ExtractMetadata(bytecode []byte) Metadata {
	for _, prefix := range metadataPrefixes {
		offset := bytes.LastIndex(bytecode, prefix)
		if offset == -1 {
			continue
		}

		var metadata Metadata
		if err := cbor.Unmarshal(bytecode[offset:], &metadata); err != nil {
			continue
		}
		return metadata
	}
	return nil
}

// StripMetadata returns the bytecode with its metadata trailer removed, along with anything following
// it, such as appended constructor arguments. Bytecode with no detectable trailer is returned as-is.
func StripMetadata(bytecode []byte) []byte {
	for _, prefix := range metadataPrefixes {
		if offset := bytes.LastIndex(bytecode, prefix); offset != -1 {
			return bytecode[:offset]
		}
	}
	return bytecode
}

// BytecodeHash returns the source hash embedded in the metadata, probing every known hash key. Returns
// nil if no hash is present. Two artifacts compiled from identical source share this hash even when
// their deployed bytecode differs by constructor arguments or immutables.
func (m Metadata) BytecodeHash() []byte {
	for _, key := range bytecodeHashKeys {
		if raw, ok := m[key]; ok {
			if hash, ok := raw.([]byte); ok {
				return hash
			}
		}
	}
	return nil
}

// CompilerVersion returns the compiler version from the metadata's three-byte `solc` entry. Nightly
// builds embed the version as a string instead, which is parsed directly.
func (m Metadata) CompilerVersion() (*semver.Version, error) {
	raw, ok := m["solc"]
	if !ok {
		return nil, errors.New("metadata carries no compiler version")
	}

	switch version := raw.(type) {
	case []byte:
		if len(version) != 3 {
			return nil, errors.Errorf("compiler version entry has %d bytes, expected 3", len(version))
		}
		return semver.NewVersion(fmt.Sprintf("%d.%d.%d", version[0], version[1], version[2]))
	case string:
		return semver.NewVersion(version)
	default:
		return nil, errors.Errorf("unsupported compiler version entry type %T", raw)
	}
}
