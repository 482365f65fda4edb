package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// SignatureDigest returns the hex BLAKE2b-256 digest of a signature artifact
// (typically a data URL captured from the signature pad).
func SignatureDigest(artifact string) string {
	sum := blake2b.Sum256([]byte(artifact))
	return hex.EncodeToString(sum[:])
}

