package contracts

import (
	"crypto/md5"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ChecksumAlgorithmMD5 is the algorithm identifier recorded for checksums produced here. MD5 serves as
// a content fingerprint for cache keying, not as a security boundary.
const ChecksumAlgorithmMD5 = "md5"

// Checksum fingerprints the contents of a source file or artifact.
type Checksum struct {
	// Algorithm names the hash algorithm which produced Hash.
	Algorithm string `json:"algorithm"`

	// Hash is the 0x-prefixed hex digest of the content.
	Hash string `json:"hash"`
}

// ComputeChecksum fingerprints the given content with MD5.
func ComputeChecksum(data []byte) Checksum {
	digest := md5.Sum(data)
	return Checksum{
		Algorithm: ChecksumAlgorithmMD5,
		Hash:      hexutil.Encode(digest[:]),
	}
}
