// Package citation extracts typed fields from pasted BibTeX-like citation
// text. Parsing is best effort: it never fails, and a field that cannot be
// found is simply empty.
package citation

import (
	"regexp"
	"strings"
)

// Record holds the fields found in one citation.
type Record struct {
	EntryType string // article, inproceedings, ... as written
	Key       string // The citation manager's own entry key
	Title     string
	Authors   []string // Ordered, never nil
	Year      string   // Raw text, not validated
	Venue     string   // booktitle if present, else journal
	DOI       string
	URL       string
}

// FirstAuthor returns the first author or the empty string.
func (r Record) FirstAuthor() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0]
}

// Match entry start: @type{key,
var entryStartRegex = regexp.MustCompile(`@(\w+)\s*\{\s*([^,\s{}]+)\s*,`)

// Author separator: "and" surrounded by whitespace, any case
var authorSepRegex = regexp.MustCompile(`(?i)\s+and\s+`)

// Manual author input also accepts commas and semicolons.
var manualAuthorSepRegex = regexp.MustCompile(`(?i)[;,]|\s+and\s+`)

// Parse extracts citation fields from raw text.
// Only the first occurrence of each field is used, so for input holding
// several entries only the first entry is reliably extracted.
func Parse(raw string) Record {
	rec := Record{
		Title:   Field(raw, "title"),
		Authors: splitNonEmpty(authorSepRegex, Field(raw, "author")),
		Year:    Field(raw, "year"),
		DOI:     Field(raw, "doi"),
		URL:     Field(raw, "url"),
	}

	// Proceedings wins over journal when both are present
	rec.Venue = Field(raw, "booktitle")
	if rec.Venue == "" {
		rec.Venue = Field(raw, "journal")
	}

	if m := entryStartRegex.FindStringSubmatch(raw); m != nil {
		rec.EntryType = m[1]
		rec.Key = m[2]
	}

	return rec
}

// SplitAuthors splits a manually typed author list on ";", "," or " and ".
// Use it only for user input: BibTeX names such as "Smith, John" contain
// commas and must go through Parse instead.
func SplitAuthors(s string) []string {
	return splitNonEmpty(manualAuthorSepRegex, s)
}

func splitNonEmpty(sep *regexp.Regexp, s string) []string {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	for _, part := range sep.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
