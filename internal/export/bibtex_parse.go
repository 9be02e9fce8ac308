package export

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/papernote/internal/paper"
)

// BibTeXIndex records the keys and DOIs already present in a .bib file.
type BibTeXIndex struct {
	Keys map[string]bool
	DOIs map[string]string // normalized DOI -> key
}

// NewBibTeXIndex creates an empty index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry reports whether e is already present, matching by DOI first
// and by citation key otherwise.
func (idx *BibTeXIndex) HasEntry(e paper.Entry) bool {
	if e.DOI != "" {
		if _, ok := idx.DOIs[normalizeDOI(e.DOI)]; ok {
			return true
		}
	}
	return idx.Keys[CitationKey(e)]
}

var (
	bibEntryStart = regexp.MustCompile(`@\w+\s*\{\s*([^,\s]+)\s*,`)
	bibDOIField   = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// ParseBibTeXFile indexes an existing .bib file. A missing file yields an
// empty index.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()

		if m := bibEntryStart.FindStringSubmatch(line); m != nil {
			currentKey = m[1]
			idx.Keys[currentKey] = true
		}
		if m := bibDOIField.FindStringSubmatch(line); m != nil && currentKey != "" {
			if doi := normalizeDOI(m[1]); doi != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return idx, nil
}

// normalizeDOI strips resolver prefixes and lowercases for comparison.
func normalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.TrimSpace(doi)
}

// AppendNew appends the entries not already in the .bib file at path and
// returns how many were written and how many skipped.
func AppendNew(path string, entries []paper.Entry) (added, skipped int, err error) {
	idx, err := ParseBibTeXFile(path)
	if err != nil {
		return 0, 0, err
	}

	var fresh []paper.Entry
	for _, e := range entries {
		if idx.HasEntry(e) {
			skipped++
			continue
		}
		fresh = append(fresh, e)
		idx.Keys[CitationKey(e)] = true
		if e.DOI != "" {
			idx.DOIs[normalizeDOI(e.DOI)] = CitationKey(e)
		}
	}
	if len(fresh) == 0 {
		return 0, skipped, nil
	}

	if err := appendToBibFile(path, ToBibTeXList(fresh)); err != nil {
		return 0, skipped, err
	}
	return len(fresh), skipped, nil
}

func appendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	// Start on a fresh line whatever the file ended with.
	if _, err := file.WriteString("\n" + content); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}
