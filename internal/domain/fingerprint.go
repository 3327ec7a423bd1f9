package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the content fingerprint of text: the lowercase hex
// sha256 of its bytes. Identical text always yields an identical fingerprint,
// which is what upsert change-detection and artifact refs rely on.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// FingerprintBytes is Fingerprint for raw artifact bytes.
func FingerprintBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
