// Package fingerprint computes content hashes used as O(1) exact-duplicate
// lookup keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the SHA-256 hex digest of the canonical text. The
// digest is used purely as an equality key and is never decoded. A
// one-character change in the input changes the digest with overwhelming
// probability.
func Fingerprint(canonicalText string) string {
	sum := sha256.Sum256([]byte(canonicalText))
	return hex.EncodeToString(sum[:])
}
