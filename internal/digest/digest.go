package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Sum returns the BLAKE2b-256 digest of data.
func Sum(data []byte) [blake2b.Size256]byte {
	return blake2b.Sum256(data)
}

// Hex returns the full digest as lowercase hex.
func Hex(data []byte) string {
	sum := Sum(data)
	return hex.EncodeToString(sum[:])
}

// Short returns a short hex fingerprint of data.
//
// It truncates the digest to 10 bytes (20 hex chars), enough to tell
// programs apart in listings and logs.
func Short(data []byte) string {
	sum := Sum(data)
	return hex.EncodeToString(sum[:10])
}
