package charset

import (
	"unicode"
	"unicode/utf8"
)

// Heuristic decides whether decoded text looks like valid regional text.
// It is a guess, not a proof; Normalizer consults it for every candidate
// decoding so the rule can be tuned without touching callers.
type Heuristic interface {
	Accept(text string) bool
}

// latinLetters covers the Latin-1 Supplement and Latin Extended-A letter
// blocks, which include every Polish, Czech, Slovak, German and Nordic letter.
var latinLetters = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00C0, Hi: 0x00D6, Stride: 1},
		{Lo: 0x00D8, Hi: 0x00F6, Stride: 1},
		{Lo: 0x00F8, Hi: 0x017F, Stride: 1},
	},
}

// PolishLetters are the diacritic letters of the Polish alphabet.
const PolishLetters = "ąćęłńóśźżĄĆĘŁŃÓŚŹŻ"

// Alphabet accepts text whose non-ASCII Latin letters all belong to a known set.
//
// Text is rejected when it contains the replacement character, a C0 control
// other than tab/CR/LF, a C1 control, or a Latin letter outside the alphabet.
// Letters of other scripts (Greek, Cyrillic) and non-letter symbols are
// accepted: a legacy code page mis-read as UTF-8 or the reverse only ever
// produces stray Latin letters and controls.
type Alphabet struct {
	Tables []*unicode.RangeTable
	Extra  string
}

// DefaultAlphabet accepts Polish and the other Latin letters seen in
// start lists of international meetings.
func DefaultAlphabet() Alphabet {
	return Alphabet{Tables: []*unicode.RangeTable{latinLetters}, Extra: PolishLetters}
}

// PolishAlphabet accepts ASCII plus Polish diacritics only.
func PolishAlphabet() Alphabet {
	return Alphabet{Extra: PolishLetters}
}

// NewAlphabet builds an alphabet by name ("latin" or "polish") extended with
// extra letters.
func NewAlphabet(name, extra string) Alphabet {
	a := DefaultAlphabet()
	if name == "polish" {
		a = PolishAlphabet()
	}
	a.Extra += extra
	return a
}

// Accept implements Heuristic.
func (a Alphabet) Accept(text string) bool {
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			return false
		case r < 0x20:
			if r != '\t' && r != '\r' && r != '\n' {
				return false
			}
		case r >= 0x7F && r <= 0x9F:
			return false
		case r < utf8.RuneSelf:
			// ASCII
		case unicode.Is(unicode.Latin, r):
			if !a.allows(r) {
				return false
			}
		}
	}
	return true
}

func (a Alphabet) allows(r rune) bool {
	for _, t := range a.Tables {
		if unicode.Is(t, r) {
			return true
		}
	}
	for _, e := range a.Extra {
		if e == r {
			return true
		}
	}
	return false
}
