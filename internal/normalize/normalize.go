// Package normalize canonicalizes free-text field values for duplicate
// comparison: case folding, compatibility decomposition, diacritic
// stripping, punctuation removal and whitespace collapsing.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes compatibility equivalents and drops the
// non-spacing marks left behind (e.g. "Ségur" -> "Segur").
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Text canonicalizes s for comparison: lowercase, NFKD decomposition,
// strip non-spacing marks, drop every rune that is not a letter, digit
// or whitespace, collapse whitespace runs to a single space and trim.
// Empty input yields the empty string. Idempotent: Text(Text(s)) == Text(s).
func Text(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
		// Everything else (punctuation, symbols, underscores) is dropped.
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Key canonicalizes an identifier value (DOI, arXiv id, ...) for exact
// matching: lowercase and trim only. Identifiers must keep their internal
// punctuation and slashes, so full text normalization does not apply.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
