// Package paperid derives human-readable paper identifiers of the form
// {year}-{FamilyName}-{TitleSlug}, e.g. 2023-Smith-DeepLearningForEveryone.
package paperid

import (
	"strings"
	"unicode"
)

// Placeholders used when an identifier component is missing.
const (
	UnknownYear = "YYYY"
	Anonymous   = "Anon"
	Untitled    = "Untitled"
)

// Slug bounds.
const (
	MaxSlugWords   = 4
	MaxSlugWordLen = 20
)

// Generator builds base identifiers with a given text normalizer.
type Generator struct {
	norm Normalizer
}

// NewGenerator creates a Generator. A nil normalizer uses DefaultNormalizer.
func NewGenerator(norm Normalizer) *Generator {
	if norm == nil {
		norm = DefaultNormalizer()
	}
	return &Generator{norm: norm}
}

var defaultGenerator = NewGenerator(nil)

// Make returns the base identifier for a paper using DefaultNormalizer.
// The result is deterministic but not guaranteed unique; see ResolveUnique.
func Make(year, firstAuthor, title string) string {
	return defaultGenerator.Make(year, firstAuthor, title)
}

// Make returns the base identifier {year}-{author}-{slug}.
func (g *Generator) Make(year, firstAuthor, title string) string {
	return YearPart(year) + "-" + AuthorPart(firstAuthor) + "-" + g.Slug(title)
}

// YearPart returns year if it is made of ASCII digits only, else UnknownYear.
// "YYYY" sorts after every numeric year.
func YearPart(year string) string {
	if year == "" {
		return UnknownYear
	}
	for _, r := range year {
		if r < '0' || r > '9' {
			return UnknownYear
		}
	}
	return year
}

// AuthorPart returns the family name of an author written either as
// "Last, First" or "First Middle Last", reduced to letters and digits.
func AuthorPart(author string) string {
	name := FamilyName(author)
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
	if name == "" {
		return Anonymous
	}
	return name
}

// FamilyName extracts the family name without further cleaning.
func FamilyName(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return ""
	}
	if before, _, found := strings.Cut(author, ","); found {
		return strings.Join(strings.Fields(before), "")
	}
	parts := strings.Fields(author)
	return parts[len(parts)-1]
}

// Slug compacts a title into at most MaxSlugWords capitalized words of at
// most MaxSlugWordLen runes each, joined without separators.
func (g *Generator) Slug(title string) string {
	s := g.norm.Decompose(title)

	// Anything that is not a letter or digit separates words. Hyphens and
	// underscores split too, so "Self-Supervised" becomes two words.
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) > MaxSlugWords {
		words = words[:MaxSlugWords]
	}

	var b strings.Builder
	for _, w := range words {
		if r := []rune(w); len(r) > MaxSlugWordLen {
			w = string(r[:MaxSlugWordLen])
		}
		b.WriteString(g.norm.Capitalize(w))
	}
	if b.Len() == 0 {
		return Untitled
	}
	return b.String()
}
