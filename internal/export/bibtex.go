// Package export writes library entries to other formats.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/papernote/internal/paper"
)

// ToBibTeX converts an entry to a BibTeX record. The key is the
// entry's own citation key when it has one, else its identifier.
func ToBibTeX(e paper.Entry) string {
	entryType := determineEntryType(e)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, CitationKey(e))

	if len(e.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(e.Authors, " and "))
	}

	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(e.Title))

	if e.Venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(e.Venue))
	}

	if e.Year.Known() {
		fmt.Fprintf(&b, "  year = {%s},\n", e.Year)
	}
	if e.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", e.DOI)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", e.URL)
	}
	if e.Keywords != "" {
		fmt.Fprintf(&b, "  keywords = {%s},\n", escapeLatex(e.Keywords))
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList converts entries to BibTeX records separated by blank lines.
func ToBibTeXList(entries []paper.Entry) string {
	var records []string
	for _, e := range entries {
		records = append(records, ToBibTeX(e))
	}
	return strings.Join(records, "\n")
}

// CitationKey returns the key an entry is exported under.
func CitationKey(e paper.Entry) string {
	if e.BibTeXKey != "" {
		return e.BibTeXKey
	}
	return e.ID
}

func determineEntryType(e paper.Entry) string {
	venue := strings.ToLower(e.Venue)

	if strings.Contains(venue, "arxiv") ||
		strings.Contains(venue, "biorxiv") ||
		strings.Contains(venue, "medrxiv") {
		return "article"
	}

	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// escapeLatex escapes characters that are special in LaTeX.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
