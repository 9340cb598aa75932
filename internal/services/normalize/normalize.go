package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes, drops combining marks, recomposes.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name canonicalizes a free-text entity name for comparison: diacritics are
// transliterated away and the result is uppercased. Punctuation, spacing and
// abbreviations are left alone on purpose; matching is only meant to be
// invariant to accents and case. Idempotent.
func Name(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		// Mn removal cannot fail on valid UTF-8; fall back to the input.
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}
