package paperid

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is the locale-sensitive part of slug generation.
type Normalizer interface {
	// Decompose returns a Unicode-decomposed form of s. Combining marks
	// left behind are treated as word separators by the slugger.
	Decompose(s string) string
	// Capitalize upper-cases the first letter of a word.
	Capitalize(word string) string
}

type textNormalizer struct {
	form  norm.Form
	upper cases.Caser
	lower cases.Caser
}

// DefaultNormalizer uses NFKD decomposition and language-neutral casing:
// first rune upper case, the rest lower case.
func DefaultNormalizer() Normalizer {
	return NewNormalizer(language.Und)
}

// NewNormalizer returns an NFKD normalizer that capitalizes words using the
// case rules of the given language (e.g. language.Turkish for dotted İ).
func NewNormalizer(tag language.Tag) Normalizer {
	return &textNormalizer{form: norm.NFKD, upper: cases.Upper(tag), lower: cases.Lower(tag)}
}

func (n *textNormalizer) Decompose(s string) string {
	return n.form.String(s)
}

// Capitalize upper-cases only the first rune. Title casing would also
// capitalize a letter that follows a leading digit ("3d" to "3D").
func (n *textNormalizer) Capitalize(word string) string {
	if word == "" {
		return word
	}
	_, size := utf8.DecodeRuneInString(word)
	return n.upper.String(word[:size]) + n.lower.String(word[size:])
}
