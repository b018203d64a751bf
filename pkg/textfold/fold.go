// Package textfold builds comparison keys for names: diacritics removed,
// lower-cased, punctuation joins turned into spaces.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the comparison key of s. "Ángel López-Sánchez" and
// "angel lopez sanchez" share the key "angel lopez sanchez".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	fields := strings.FieldsFunc(strings.ToLower(stripped), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '\''
	})
	return strings.Join(fields, " ")
}

// Tokens returns the folded words of s
func Tokens(s string) []string {
	return strings.Fields(Fold(s))
}
