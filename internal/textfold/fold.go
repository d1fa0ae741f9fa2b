// Package textfold folds names and header tokens into comparison keys.
//
// Folding removes case and diacritics so that "Łukasz", "ŁUKASZ" and "Lukasz"
// compare equal. Folded keys are for lookups only; stored values keep their
// original spelling.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry their diacritic in the base code point and therefore
// survive NFD decomposition.
var undecomposable = strings.NewReplacer(
	"ł", "l", "Ł", "l",
	"đ", "d", "Đ", "d",
	"ø", "o", "Ø", "o",
	"ß", "ss",
	"æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe",
	"ı", "i",
)

// Fold returns the case- and diacritic-insensitive key for s.
// Runs of whitespace collapse to a single space.
func Fold(s string) string {
	s = undecomposable.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// Equal reports whether a and b fold to the same key.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
