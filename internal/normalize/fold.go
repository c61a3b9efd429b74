// Package normalize turns raw spreadsheet cell values into canonical lead
// field values. Normalizers never fail: they return a best-effort value and,
// where useful, a warning message for the row.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, strips diacritics and trims surrounding whitespace.
// "  Panamá " and "PANAMA" fold to the same key.
func Fold(s string) string {
	// Transformers carry state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// collapse folds s and replaces every run of the given separator runes and
// whitespace with a single sep.
func collapse(s string, sep string, separators string) string {
	s = Fold(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(separators, r)
	})
	return strings.Join(fields, sep)
}

// Key collapses whitespace, underscores and hyphens into single spaces after
// folding. Used for header and alias lookups.
func Key(s string) string {
	return collapse(s, " ", "_-")
}
