package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexRe = regexp.MustCompile(`^[a-f0-9]{64}$`)

func TestFingerprint_Deterministic(t *testing.T) {
	text := "Municipal waste ordinance 2021/44, consolidated text."

	first := Fingerprint(text)
	second := Fingerprint(text)

	assert.Equal(t, first, second)
	assert.Regexp(t, hexRe, first)
}

func TestFingerprint_ChangesWithText(t *testing.T) {
	a := Fingerprint("Zoning plan for district North")
	b := Fingerprint("Zoning plan for district North, amended")

	assert.NotEqual(t, a, b)
}

func TestFingerprintBytes_MatchesStringForm(t *testing.T) {
	text := "same content"
	assert.Equal(t, Fingerprint(text), FingerprintBytes([]byte(text)))
}

func TestValidCanonicalURL(t *testing.T) {
	assert.True(t, ValidCanonicalURL("https://registry.example.org/doc/44"))
	assert.False(t, ValidCanonicalURL("/internal/api/doc/44"))
	assert.False(t, ValidCanonicalURL("doc-44"))
	assert.False(t, ValidCanonicalURL("://broken"))
}
