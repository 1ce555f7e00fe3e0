package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeID canonicalizes a declared identifier: trimmed, lowercased,
// with internal whitespace collapsed to single hyphens.
func NormalizeID(id string) string {
	id = strings.TrimSpace(strings.ToLower(id))
	return whitespaceRun.ReplaceAllString(id, "-")
}

// NormalizeText canonicalizes statement text: trimmed, lowercased, with
// whitespace runs collapsed to single spaces.
func NormalizeText(text string) string {
	text = strings.TrimSpace(strings.ToLower(text))
	return whitespaceRun.ReplaceAllString(text, " ")
}

// Fingerprint derives a deterministic identity from normalized text and
// category. Re-running extraction on unchanged input yields identical
// fingerprints, which the report hash chain depends on.
func Fingerprint(text, category string) string {
	h := sha256.New()
	h.Write([]byte(NormalizeText(text)))
	h.Write([]byte{0})
	h.Write([]byte(NormalizeText(category)))
	return "fp-" + hex.EncodeToString(h.Sum(nil))[:16]
}
