package index

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/matsen/papernote/internal/paper"
)

// Columns is the fixed column order of the CSV index.
var Columns = []string{"id", "title", "year", "venue", "overall", "tags", "authors", "pdf"}

// ListSeparator joins tags and authors inside a single CSV cell.
const ListSeparator = ";"

// ErrNoIDColumn is returned when a CSV index has no "id" column, so no row
// can be keyed.
var ErrNoIDColumn = errors.New("csv index has no id column")

// Row is the tabular projection of a paper.Entry.
type Row struct {
	ID      string
	Title   string
	Year    paper.Year
	Venue   string
	Overall float64
	Tags    []string
	Authors []string
	PDF     string
}

// RowFromEntry projects an entry onto the CSV columns.
func RowFromEntry(e paper.Entry) Row {
	e = e.Normalize()
	return Row{
		ID:      e.ID,
		Title:   e.Title,
		Year:    e.Year,
		Venue:   e.Venue,
		Overall: e.Scores.Overall,
		Tags:    slices.Clone(e.Tags),
		Authors: slices.Clone(e.Authors),
		PDF:     e.PDF,
	}
}

func (r Row) record() []string {
	return []string{
		r.ID,
		r.Title,
		r.Year.String(),
		r.Venue,
		paper.FormatScore(r.Overall),
		listCell(r.Tags),
		listCell(r.Authors),
		r.PDF,
	}
}

// CSVIndex is the tabular representation of the library.
type CSVIndex struct {
	path    string
	rows    map[string]Row
	skipped int
	logger  *slog.Logger
}

// NewCSVIndex creates an empty CSV index backed by path. Call Load to read
// existing rows.
func NewCSVIndex(path string, opts ...Option) *CSVIndex {
	o := buildOptions(opts)
	return &CSVIndex{path: path, rows: make(map[string]Row), logger: o.logger}
}

// Path returns the backing file path.
func (c *CSVIndex) Path() string {
	return c.path
}

// Load replaces the in-memory rows with the file contents.
// A missing file is an empty index. Malformed rows are skipped with a
// warning; a header without an id column is an error.
func (c *CSVIndex) Load() error {
	c.rows = make(map[string]Row)
	c.skipped = 0

	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening csv index: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // Checked per row below
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := cols["id"]; !ok {
		return fmt.Errorf("%s: %w", c.path, ErrNoIDColumn)
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				c.skip("unparsable csv row", "line", parseErr.Line, "error", parseErr.Err)
				continue
			}
			return fmt.Errorf("reading csv index: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(rec) != len(header) {
			c.skip("csv row has wrong field count", "line", line, "fields", len(rec), "want", len(header))
			continue
		}

		row, err := parseRow(cols, rec)
		if err != nil {
			c.skip("malformed csv row", "line", line, "error", err)
			continue
		}
		c.rows[row.ID] = row
	}

	return nil
}

func (c *CSVIndex) skip(msg string, args ...any) {
	c.skipped++
	c.logger.Warn(msg, append([]any{"path", c.path}, args...)...)
}

func parseRow(cols map[string]int, rec []string) (Row, error) {
	get := func(name string) string {
		if i, ok := cols[name]; ok {
			return rec[i]
		}
		return ""
	}

	row := Row{
		ID:      strings.TrimSpace(get("id")),
		Title:   get("title"),
		Year:    paper.Year(get("year")),
		Venue:   get("venue"),
		Tags:    splitList(get("tags")),
		Authors: splitList(get("authors")),
		PDF:     get("pdf"),
	}
	if row.ID == "" {
		return Row{}, errors.New("empty id")
	}
	if row.Year == "" {
		row.Year = paper.UnknownYear
	}

	if s := strings.TrimSpace(get("overall")); s != "" {
		overall, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Row{}, fmt.Errorf("parsing overall score %q: %w", s, err)
		}
		row.Overall = overall
	}

	return row, nil
}

// listCell joins a list into one CSV cell. Items containing ListSeparator
// do not survive splitList unchanged.
func listCell(items []string) string {
	return strings.Join(items, ListSeparator)
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ListSeparator) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Skipped returns the number of rows dropped by the last Load.
func (c *CSVIndex) Skipped() int {
	return c.skipped
}

// Upsert inserts the row or replaces the existing row with the same ID.
func (c *CSVIndex) Upsert(row Row) {
	c.rows[row.ID] = row
}

// Get returns the row for id.
func (c *CSVIndex) Get(id string) (Row, bool) {
	row, ok := c.rows[id]
	return row, ok
}

// IDs returns all identifiers in ascending order.
func (c *CSVIndex) IDs() []string {
	return sortedKeys(c.rows)
}

// Rows returns all rows sorted by ID.
func (c *CSVIndex) Rows() []Row {
	rows := make([]Row, 0, len(c.rows))
	for _, id := range c.IDs() {
		rows = append(rows, c.rows[id])
	}
	return rows
}

// Len returns the number of rows.
func (c *CSVIndex) Len() int {
	return len(c.rows)
}

// Save rewrites the whole file: header first, then rows sorted by ID.
func (c *CSVIndex) Save() error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range c.Rows() {
		if err := w.Write(row.record()); err != nil {
			return fmt.Errorf("writing csv row %s: %w", row.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return writeFileAtomic(c.path, buf.Bytes(), 0644)
}
