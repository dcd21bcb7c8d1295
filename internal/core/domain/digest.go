package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent computes the hex SHA-256 digest of raw file bytes.
// The digest is computed before any normalisation so formatting-only edits
// still register as changes.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
