// Package note renders the per-paper Markdown note: YAML front matter
// carrying the index fields and the original citation text, followed by
// sections for keywords, summary and the reader's own notes.
package note

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/papernote/internal/paper"
	"gopkg.in/yaml.v3"
)

// ErrNoteExists is returned by Write when the target note already exists.
var ErrNoteExists = errors.New("note already exists")

// Dir is the notes directory relative to the library root.
const Dir = "notes"

// Doc is everything a note embeds.
type Doc struct {
	Entry  paper.Entry
	BibTeX string // Citation text as pasted
}

type frontMatter struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Authors   []string  `yaml:"authors,flow"`
	Venue     string    `yaml:"venue"`
	Year      yearValue `yaml:"year"`
	DOI       string    `yaml:"doi"`
	URL       string    `yaml:"url"`
	PDF       string    `yaml:"pdf"`
	PDFSHA256 string    `yaml:"pdf_sha256"`
	Tags      []string  `yaml:"tags,flow"`
	FreeTags  []string  `yaml:"free_tags,flow"`
	Scores    struct {
		Overall fixedScore `yaml:"overall"`
	} `yaml:"scores"`
	BibTeX string `yaml:"bibtex"`
}

// yearValue encodes numeric years as integers and unknown years as null.
type yearValue paper.Year

func (y yearValue) MarshalYAML() (interface{}, error) {
	py := paper.Year(y)
	switch {
	case !py.Known():
		return nil, nil
	case py.IsNumeric():
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: py.String()}, nil
	default:
		return py.String(), nil
	}
}

// fixedScore keeps the two-decimal form ("4.00") that a plain float loses.
type fixedScore float64

func (s fixedScore) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: paper.FormatScore(float64(s))}, nil
}

// Render returns the full note text.
func Render(doc Doc) ([]byte, error) {
	e := doc.Entry
	fm := frontMatter{
		ID:        e.ID,
		Title:     e.Title,
		Authors:   nonNil(e.Authors),
		Venue:     e.Venue,
		Year:      yearValue(e.Year),
		DOI:       e.DOI,
		URL:       e.URL,
		PDF:       e.PDF,
		PDFSHA256: e.PDFSHA256,
		Tags:      nonNil(e.Tags),
		FreeTags:  []string{},
		BibTeX:    doc.BibTeX,
	}
	fm.Scores.Overall = fixedScore(e.Scores.Overall)

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}
	buf.WriteString("---\n")

	section(&buf, "Keywords", e.Keywords)
	section(&buf, "Summary", e.Summary)
	section(&buf, "Notes", e.Comment)

	return buf.Bytes(), nil
}

func section(buf *bytes.Buffer, heading, body string) {
	fmt.Fprintf(buf, "\n## %s\n%s\n", heading, body)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Path returns the note path for id relative to the library root.
func Path(id string) string {
	return filepath.ToSlash(filepath.Join(Dir, id+".md"))
}

// Write creates the note at path. It never overwrites: an existing file
// yields ErrNoteExists.
func Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating notes directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNoteExists)
		}
		return fmt.Errorf("creating note: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing note: %w", err)
	}
	return f.Close()
}

// ExistingIDs lists the identifiers of notes already present in dir, so
// that a new identifier never collides with an orphaned note file.
func ExistingIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading notes directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		ids = append(ids, e.Name()[:len(e.Name())-len(".md")])
	}
	return ids, nil
}
