// Package identity derives stable identity keys for graph entities.
//
// Author, topic, and keyword identity is a pure function of the normalized
// text form. Paper identity is a content hash of the source file bytes, so
// re-ingesting an unchanged file is always detected regardless of filename
// or metadata drift.
package identity

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownKey is the sentinel key used when a field is missing or normalizes
// to nothing. Resolving to a sentinel node keeps a batch ingest from
// aborting over one absent field.
const UnknownKey = "unknown"

// foldDiacritics decomposes to NFD, strips combining marks, and recomposes.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw string into its identity form: lower-case,
// diacritics folded, internal whitespace collapsed to single spaces, and
// leading/trailing punctuation stripped. Two raw strings that normalize
// equal resolve to the same node.
func Normalize(raw string) string {
	folded, _, err := transform.String(foldDiacritics, raw)
	if err != nil {
		// Fall back to the raw string; normalization must never fail.
		folded = raw
	}

	folded = strings.ToLower(folded)
	folded = strings.Join(strings.Fields(folded), " ")
	folded = strings.TrimFunc(folded, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})

	return strings.TrimSpace(folded)
}

// Key returns the normalization key for a raw string, or UnknownKey when
// the input normalizes to nothing.
func Key(raw string) string {
	key := Normalize(raw)
	if key == "" {
		return UnknownKey
	}
	return key
}

// TitleKey returns the normalized-title key for a paper title.
func TitleKey(title string) string {
	return Key(title)
}

// ContentHash computes the content-addressed fingerprint of a file's bytes.
func ContentHash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
