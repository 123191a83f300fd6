// Package scramble turns text into gibberish by randomly rearranging
// letters and digits while keeping spaces and punctuation in place.
package scramble

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Class categorizes a single rune for scrambling purposes.
type Class uint8

const (
	// ClassLiteral runes (punctuation, whitespace, symbols) are preserved
	// at their original positions and never enter a shuffle pool.
	ClassLiteral Class = iota

	// ClassConsonant covers letters whose decomposed base form is in the
	// fixed consonant set.
	ClassConsonant

	// ClassVowel covers letters whose decomposed base form is in the
	// fixed vowel set (y counts as a vowel).
	ClassVowel

	// ClassOtherLetter covers letters outside the Latin consonant/vowel
	// sets, e.g. non-Latin scripts.
	ClassOtherLetter

	// ClassDigit covers decimal digits.
	ClassDigit
)

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case ClassConsonant:
		return "consonant"
	case ClassVowel:
		return "vowel"
	case ClassOtherLetter:
		return "letter"
	case ClassDigit:
		return "digit"
	default:
		return "literal"
	}
}

// Letter sets used when preserving the consonant/vowel distribution.
const (
	consonants = "bcdfghjklmnpqrstvwxz"
	vowels     = "aeiouy"
)

// Classify returns the class of r and, for letters, its lower-cased form.
// Non-letter runes are returned unchanged.
//
// Letters are matched case-insensitively with accents and diacritics
// stripped via canonical decomposition, so "é" classifies as a vowel and
// "ç" as a consonant. Letters with no Latin base form (Greek, CJK, ...)
// classify as ClassOtherLetter.
func Classify(r rune) (Class, rune) {
	switch {
	case unicode.IsLetter(r):
		lower := unicode.ToLower(r)
		base := baseRune(lower)
		switch {
		case runeInSet(base, consonants):
			return ClassConsonant, lower
		case runeInSet(base, vowels):
			return ClassVowel, lower
		default:
			return ClassOtherLetter, lower
		}
	case unicode.IsDigit(r):
		return ClassDigit, r
	default:
		return ClassLiteral, r
	}
}

// baseRune strips accents and diacritics by taking the first rune of the
// compatibility decomposition, e.g. 'é' -> 'e', 'ﬁ' -> 'f'.
func baseRune(r rune) rune {
	decomposed := norm.NFKD.String(string(r))
	for _, b := range decomposed {
		return b
	}
	return r
}

func runeInSet(r rune, set string) bool {
	for _, s := range set {
		if r == s {
			return true
		}
	}
	return false
}
