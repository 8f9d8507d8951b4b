package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 digest of text. It identifies document
// contents for cache validation only.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// optionalFingerprint hashes text, leaving an absent value as the empty string.
func optionalFingerprint(text string) string {
	if text == "" {
		return ""
	}
	return Fingerprint(text)
}
