package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// SecretFingerprint returns a short, non-reversible identifier for a secret so
// records can tell keys apart without storing them.
// Format: blake2b:<first 16 hex chars of BLAKE2b-256>
func SecretFingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(secret))
	return "blake2b:" + hex.EncodeToString(sum[:])[:16]
}
