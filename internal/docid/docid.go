// Package docid derives deterministic document identity from contract content.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
)

const prefix = "doc:"

// ContentHash returns the hex SHA-256 of the raw document bytes.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ForContent returns a stable document ID for the given raw bytes.
// The same bytes always yield the same ID, so re-uploading a contract
// updates the existing document instead of duplicating it.
func ForContent(content []byte) string {
	return prefix + ContentHash(content)[:32]
}
