package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiPattern matches 10.<registrant>/<suffix>; the suffix stops at
// whitespace and characters that never appear unescaped in a DOI.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// sniffPages bounds how far into a PDF the metadata sniffers look.
const sniffPages = 3

// ExtractDOI returns the first DOI printed in the opening pages of the PDF,
// or "" when none is found.
func ExtractDOI(path string) (string, error) {
	var doi string
	err := eachPageText(path, sniffPages, func(text string) bool {
		doi = FindDOI(text)
		return doi != ""
	})
	return doi, err
}

// ExtractTitle guesses the title as the first substantial line of the
// first page. Best effort: "" means no guess.
func ExtractTitle(path string) (string, error) {
	var title string
	err := eachPageText(path, 1, func(text string) bool {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if len([]rune(line)) > 20 && !isBoilerplate(line) {
				title = line
				return true
			}
		}
		return false
	})
	return title, err
}

// eachPageText feeds the plain text of up to maxPages pages to fn until it
// returns true. Pages whose text cannot be extracted are skipped.
func eachPageText(path string, maxPages int, fn func(string) bool) error {
	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	n := min(maxPages, r.NumPage())
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if fn(text) {
			return nil
		}
	}
	return nil
}

// FindDOI returns the first plausible DOI in text.
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// isBoilerplate reports running heads and copyright lines.
func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "arxiv:"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
