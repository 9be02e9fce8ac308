// Package ingest adds one paper to a library: it binds a PDF to pasted
// citation text, assigns the paper an identifier, writes its note and
// upserts it into both indexes.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matsen/papernote/internal/citation"
	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/note"
	"github.com/matsen/papernote/internal/paper"
	"github.com/matsen/papernote/internal/paperid"
	"github.com/matsen/papernote/internal/pdf"
)

var (
	// ErrEmptyCitation is returned when no citation text was supplied.
	ErrEmptyCitation = errors.New("citation text is empty")

	// ErrNoPDF is returned when no PDF can be bound to the paper.
	ErrNoPDF = errors.New("no PDF to ingest")
)

// Request describes one paper to add. Empty fields are asked for when a
// Prompter is available and defaulted otherwise.
type Request struct {
	Root     string // Library root
	PDF      string // Explicit PDF; empty picks from the inbox
	Glob     string // Inbox pattern, default *.pdf
	Citation string // Pasted citation text

	Keywords string
	Summary  string
	Comment  string
	Score    *float64 // nil asks, offering DefaultScore

	DefaultScore float64 // Usually paper.DefaultScore or the library's setting
}

// Options configures Run.
type Options struct {
	Logger   *slog.Logger
	Prompter Prompter // nil runs non-interactively
	Index    []index.Option
}

// Result is the outcome of a successful Run.
type Result struct {
	Entry    paper.Entry
	Record   citation.Record
	NoteFile string // Absolute note path
}

type run struct {
	req    Request
	log    *slog.Logger
	prompt Prompter
}

// Run ingests one PDF/citation pair.
func Run(req Request, opts Options) (*Result, error) {
	r := &run{req: req, log: opts.Logger, prompt: opts.Prompter}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}

	pdfPath, err := r.pickPDF()
	if err != nil {
		return nil, err
	}
	r.log.Debug("picked PDF", "path", pdfPath)

	text, err := r.citationText()
	if err != nil {
		return nil, err
	}
	rec := citation.Parse(text)

	if err := r.fillMissing(&rec, pdfPath); err != nil {
		return nil, err
	}

	keywords, err := r.optional(r.req.Keywords, "Keywords (comma or semicolon separated)", "")
	if err != nil {
		return nil, err
	}
	summary, err := r.optional(r.req.Summary, "One-paragraph summary", "")
	if err != nil {
		return nil, err
	}
	comment, err := r.optional(r.req.Comment, "Comment (optional)", "")
	if err != nil {
		return nil, err
	}
	score, err := r.score()
	if err != nil {
		return nil, err
	}

	store, err := index.Open(config.IndexPath(req.Root), opts.Index...)
	if err != nil {
		return nil, err
	}
	if err := store.Writable(); err != nil {
		return nil, err
	}
	noteIDs, err := note.ExistingIDs(config.NotesPath(req.Root))
	if err != nil {
		return nil, err
	}
	taken := paperid.NewSet(store.IDs(), noteIDs)
	baseID := paperid.Make(rec.Year, rec.FirstAuthor(), rec.Title)
	id := taken.Reserve(baseID)
	if id != baseID {
		r.log.Info("identifier taken, using suffix", "base", baseID, "id", id)
	}

	sum, err := pdf.Checksum(pdfPath)
	if err != nil {
		return nil, err
	}
	pdfRel, err := pdf.RelPath(req.Root, pdfPath)
	if err != nil {
		return nil, err
	}

	entry := paper.Entry{
		ID:        id,
		Title:     rec.Title,
		Year:      paper.Year(rec.Year),
		Venue:     rec.Venue,
		Scores:    paper.Scores{Overall: score},
		Tags:      paper.ParseTags(keywords),
		Authors:   rec.Authors,
		NotePath:  note.Path(id),
		PDF:       pdfRel,
		PDFSHA256: sum,
		Keywords:  keywords,
		Summary:   summary,
		Comment:   comment,
		DOI:       rec.DOI,
		URL:       rec.URL,
		BibTeXKey: rec.Key,
	}

	doc, err := note.Render(note.Doc{Entry: entry, BibTeX: text})
	if err != nil {
		return nil, err
	}
	noteFile := filepath.Join(req.Root, filepath.FromSlash(entry.NotePath))
	if err := note.Write(noteFile, doc); err != nil {
		return nil, err
	}
	r.log.Debug("wrote note", "path", noteFile)

	if err := store.Upsert(entry); err != nil {
		return nil, err
	}
	if err := store.Save(); err != nil {
		return nil, err
	}

	stored, _ := store.Get(id)
	return &Result{Entry: stored, Record: rec, NoteFile: noteFile}, nil
}

func (r *run) pickPDF() (string, error) {
	if r.req.PDF != "" {
		info, err := os.Stat(r.req.PDF)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNoPDF, r.req.PDF)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrNoPDF, r.req.PDF)
		}
		return filepath.Abs(r.req.PDF)
	}

	inbox := config.RawPath(r.req.Root)
	pdfs, err := pdf.FindPDFs(inbox, r.req.Glob)
	if err != nil {
		return "", err
	}

	switch {
	case len(pdfs) == 0:
		return "", fmt.Errorf("%w: inbox %s is empty", ErrNoPDF, inbox)
	case len(pdfs) == 1:
		return pdfs[0], nil
	case r.prompt == nil:
		return "", fmt.Errorf("%d PDFs in %s; choose one with --pdf", len(pdfs), inbox)
	}

	r.prompt.Say("Select the PDF to process:")
	for i, p := range pdfs {
		r.prompt.Say("  %d. %s", i+1, filepath.Base(p))
	}
	for {
		answer, err := r.prompt.Ask(fmt.Sprintf("Number (1-%d)", len(pdfs)), "")
		if err != nil {
			return "", fmt.Errorf("selecting PDF: %w", err)
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(pdfs) {
			return pdfs[n-1], nil
		}
		r.prompt.Say("  enter a number between 1 and %d", len(pdfs))
	}
}

func (r *run) citationText() (string, error) {
	text := r.req.Citation
	if text == "" && r.prompt != nil {
		var err error
		text, err = r.prompt.AskLines("Paste the BibTeX citation:")
		if err != nil {
			return "", fmt.Errorf("reading citation: %w", err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCitation
	}
	return text, nil
}

// fillMissing asks for the fields the citation lacked and applies the
// defaults for anything still empty.
func (r *run) fillMissing(rec *citation.Record, pdfPath string) error {
	var err error

	if rec.Title == "" {
		r.warn("no title in citation")
		def := paperid.Untitled
		if r.prompt != nil {
			if guess, gerr := pdf.ExtractTitle(pdfPath); gerr == nil && guess != "" {
				def = guess
			} else if gerr != nil {
				r.log.Debug("title sniffing failed", "error", gerr)
			}
		}
		if rec.Title, err = r.optional("", "Title", def); err != nil {
			return err
		}
	}

	if len(rec.Authors) == 0 {
		r.warn("no authors in citation")
		raw, err := r.optional("", "Authors (separated by ';', ',' or 'and')", "")
		if err != nil {
			return err
		}
		rec.Authors = citation.SplitAuthors(raw)
		if len(rec.Authors) == 0 {
			rec.Authors = []string{paperid.Anonymous}
		}
	}

	if rec.Year == "" {
		if rec.Year, err = r.optional("", "Year (e.g. 2023)", ""); err != nil {
			return err
		}
	}
	if rec.Venue == "" {
		if rec.Venue, err = r.optional("", "Venue (journal or proceedings)", ""); err != nil {
			return err
		}
	}

	if rec.DOI == "" {
		doi, err := pdf.ExtractDOI(pdfPath)
		if err != nil {
			r.log.Debug("DOI sniffing failed", "error", err)
		} else if doi != "" {
			r.log.Info("DOI taken from PDF", "doi", doi)
			rec.DOI = doi
		}
	}
	return nil
}

// optional returns given when set, else asks, else returns def.
func (r *run) optional(given, question, def string) (string, error) {
	if given != "" || r.prompt == nil {
		if given == "" {
			return def, nil
		}
		return given, nil
	}

	answer, err := r.prompt.Ask(question, def)
	if errors.Is(err, io.EOF) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", question, err)
	}
	return answer, nil
}

func (r *run) score() (float64, error) {
	if r.req.Score != nil {
		if err := paper.ValidateScore(*r.req.Score); err != nil {
			return 0, err
		}
		return *r.req.Score, nil
	}
	if r.prompt == nil {
		return r.req.DefaultScore, nil
	}

	question := fmt.Sprintf("Overall score (%g-%g)", paper.MinScore, paper.MaxScore)
	def := strconv.FormatFloat(r.req.DefaultScore, 'f', -1, 64)
	for {
		answer, err := r.prompt.Ask(question, def)
		if errors.Is(err, io.EOF) {
			return r.req.DefaultScore, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading score: %w", err)
		}
		s, perr := strconv.ParseFloat(answer, 64)
		if perr == nil && paper.ValidateScore(s) == nil {
			return s, nil
		}
		r.prompt.Say("  enter a number between %g and %g", paper.MinScore, paper.MaxScore)
	}
}

func (r *run) warn(msg string) {
	if r.prompt != nil {
		r.prompt.Say("warning: %s, please enter it manually", msg)
		return
	}
	r.log.Warn(msg + ", using default")
}
