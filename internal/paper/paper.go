// Package paper defines the core domain types for indexed papers.
package paper

// MaxSummaryLen is the maximum number of characters of a summary kept in the
// structured index. Notes keep the full text.
const MaxSummaryLen = 2000

// Entry represents one paper in the library indexes.
type Entry struct {
	// Identity
	ID string `json:"id"` // Human-readable identifier, e.g. 2023-Smith-DeepLearningForEveryone

	// Metadata
	Title   string   `json:"title"`
	Year    Year     `json:"year"`
	Venue   string   `json:"venue"` // Conference proceedings or journal
	Scores  Scores   `json:"scores"`
	Tags    []string `json:"tags"`
	Authors []string `json:"authors"`

	// Files (relative to the library root, forward slashes)
	NotePath  string `json:"path"`
	PDF       string `json:"pdf"`
	PDFSHA256 string `json:"pdf_sha256"`

	// Free text, passed through untouched
	Keywords string `json:"keywords"`
	Summary  string `json:"summary"`
	Comment  string `json:"comment"`

	// Citation identifiers
	DOI       string `json:"doi"`
	URL       string `json:"url"`
	BibTeXKey string `json:"bibtex_key"`
}

// Scores holds the reader's self-assessment of a paper.
type Scores struct {
	Overall float64 `json:"overall"` // 0.0 - 5.0
}

// Normalize fills the zero values the indexes never store: an empty year
// becomes UnknownYear, nil slices become empty ones, and the summary is
// capped at MaxSummaryLen characters.
func (e Entry) Normalize() Entry {
	if e.Year == "" {
		e.Year = UnknownYear
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Authors == nil {
		e.Authors = []string{}
	}
	if r := []rune(e.Summary); len(r) > MaxSummaryLen {
		e.Summary = string(r[:MaxSummaryLen])
	}
	return e
}
