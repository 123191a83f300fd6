package scramble

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand/v2"
	"strings"
	"unicode"
)

// Scrambler accumulates text and produces a gibberish permutation of it.
//
// Letters and digits are shuffled within their class pools; everything
// else stays at its original position. With the default preserve mode,
// consonants and vowels shuffle in separate pools so scrambled words keep
// a plausible phonetic texture. A Scrambler is single-use per document
// pass: Feed any number of times, then Scramble once. It is not safe for
// concurrent use.
type Scrambler struct {
	buf      []rune // original content, in order
	letters  []rune // unified letter pool (mix-freely mode, and non-Latin letters)
	cons     []rune // consonant pool (preserve mode)
	vowels   []rune // vowel pool (preserve mode)
	digits   []rune // digit pool
	preserve bool
	rng      *mathrand.Rand
}

// Option configures a Scrambler.
type Option func(*Scrambler)

// WithMixedLetters disables the consonant/vowel split, shuffling all
// letters in a single pool.
func WithMixedLetters() Option {
	return func(s *Scrambler) { s.preserve = false }
}

// withRand overrides the random source. Test hook only; production
// callers always get a cryptographically seeded generator.
func withRand(rng *mathrand.Rand) Option {
	return func(s *Scrambler) { s.rng = rng }
}

// New creates a Scrambler. By default the original distribution of
// consonants and vowels is preserved.
func New(opts ...Option) *Scrambler {
	s := &Scrambler{preserve: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = mathrand.New(newChaCha8Source())
	}
	return s
}

// newChaCha8Source returns a ChaCha8 generator seeded from the operating
// system's CSPRNG. Predictable scramble output would let a scraper undo
// the permutation, so this is a security property, not cosmetic.
func newChaCha8Source() *mathrand.ChaCha8 {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand never fails on supported platforms; if it does,
		// the process has bigger problems than scrambling quality.
		panic(fmt.Sprintf("scramble: read random seed: %v", err))
	}
	return mathrand.NewChaCha8(seed)
}

// Feed appends text to the scramble buffer. May be called repeatedly;
// content accumulates until Scramble or Clear.
func (s *Scrambler) Feed(text string) {
	for _, r := range text {
		s.buf = append(s.buf, r)

		class, lower := Classify(r)
		switch class {
		case ClassConsonant:
			if s.preserve {
				s.cons = append(s.cons, lower)
			} else {
				s.letters = append(s.letters, lower)
			}
		case ClassVowel:
			if s.preserve {
				s.vowels = append(s.vowels, lower)
			} else {
				s.letters = append(s.letters, lower)
			}
		case ClassOtherLetter:
			s.letters = append(s.letters, lower)
		case ClassDigit:
			s.digits = append(s.digits, r)
		}
	}
}

// Len returns the number of runes currently buffered.
func (s *Scrambler) Len() int {
	return len(s.buf)
}

// Clear discards all buffered content.
func (s *Scrambler) Clear() {
	s.buf = s.buf[:0]
	s.letters = s.letters[:0]
	s.cons = s.cons[:0]
	s.vowels = s.vowels[:0]
	s.digits = s.digits[:0]
}

// Scramble shuffles each class pool and replays the buffered content
// position by position: literals keep their original rune, digits draw
// from the shuffled digit pool, letters draw from the pool matching their
// original class with the original case re-applied. The buffer is cleared
// afterwards.
//
// The output is always a permutation of the input within each class:
// same length, same rune multiset per class, literals as fixed points.
func (s *Scrambler) Scramble() string {
	s.rng.Shuffle(len(s.letters), func(i, j int) {
		s.letters[i], s.letters[j] = s.letters[j], s.letters[i]
	})
	if s.preserve {
		s.rng.Shuffle(len(s.cons), func(i, j int) {
			s.cons[i], s.cons[j] = s.cons[j], s.cons[i]
		})
		s.rng.Shuffle(len(s.vowels), func(i, j int) {
			s.vowels[i], s.vowels[j] = s.vowels[j], s.vowels[i]
		})
	}
	s.rng.Shuffle(len(s.digits), func(i, j int) {
		s.digits[i], s.digits[j] = s.digits[j], s.digits[i]
	})

	var out strings.Builder
	out.Grow(len(s.buf))

	for _, r := range s.buf {
		class, _ := Classify(r)
		switch class {
		case ClassConsonant, ClassVowel, ClassOtherLetter:
			replacement := s.popLetter(class)
			if unicode.IsUpper(r) {
				replacement = unicode.ToUpper(replacement)
			}
			out.WriteRune(replacement)
		case ClassDigit:
			out.WriteRune(s.popDigit())
		default:
			out.WriteRune(r)
		}
	}

	s.Clear()
	return out.String()
}

// popLetter removes and returns the next letter from the pool matching
// class. Underflow means Feed and Scramble were mispaired, which is a
// defect in this package, so it panics rather than silently substituting.
func (s *Scrambler) popLetter(class Class) rune {
	pool := &s.letters
	if s.preserve {
		switch class {
		case ClassConsonant:
			pool = &s.cons
		case ClassVowel:
			pool = &s.vowels
		}
	}
	if len(*pool) == 0 {
		panic(fmt.Sprintf("scramble: %s pool underflow", class))
	}
	r := (*pool)[0]
	*pool = (*pool)[1:]
	return r
}

func (s *Scrambler) popDigit() rune {
	if len(s.digits) == 0 {
		panic("scramble: digit pool underflow")
	}
	r := s.digits[0]
	s.digits = s.digits[1:]
	return r
}

// Text scrambles a standalone string with a fresh Scrambler. This is the
// whole pipeline for plain-text content and for isolated attribute values.
func Text(text string, opts ...Option) string {
	s := New(opts...)
	s.Feed(text)
	return s.Scramble()
}
