package index

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/matsen/papernote/internal/paper"
)

// Representation names used in errors and drift reports.
const (
	RepCSV   = "csv"
	RepJSONL = "jsonl"
)

// SaveError reports which representation failed to save. When the JSONL
// write fails after the CSV write succeeded, the two indexes disagree until
// the next successful save.
type SaveError struct {
	Representation string
	Path           string
	Err            error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s index %s: %v", e.Representation, e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Store keeps the CSV and JSONL indexes of one library in step. It is the
// only code that reads or writes the index files.
type Store struct {
	csv   *CSVIndex
	jsonl *JSONLIndex
}

// New returns an empty store backed by dir without reading it. Saving it
// replaces whatever the files held.
func New(dir string, opts ...Option) *Store {
	return &Store{
		csv:   NewCSVIndex(filepath.Join(dir, CSVFile), opts...),
		jsonl: NewJSONLIndex(filepath.Join(dir, JSONLFile), opts...),
	}
}

// Open loads both indexes from dir.
func Open(dir string, opts ...Option) (*Store, error) {
	s := New(dir, opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reloads both indexes from disk, discarding unsaved changes.
func (s *Store) Load() error {
	if err := s.csv.Load(); err != nil {
		return fmt.Errorf("loading csv index: %w", err)
	}
	if err := s.jsonl.Load(); err != nil {
		return fmt.Errorf("loading jsonl index: %w", err)
	}
	return nil
}

// CSV returns the tabular index.
func (s *Store) CSV() *CSVIndex {
	return s.csv
}

// JSONL returns the structured index.
func (s *Store) JSONL() *JSONLIndex {
	return s.jsonl
}

// IDs returns the sorted union of identifiers in both indexes. Collision
// checks must use the union so that an entry present in only one file still
// blocks its identifier.
func (s *Store) IDs() []string {
	ids := append(s.csv.IDs(), s.jsonl.IDs()...)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Has reports whether id is present in either index.
func (s *Store) Has(id string) bool {
	if _, ok := s.csv.Get(id); ok {
		return true
	}
	_, ok := s.jsonl.Get(id)
	return ok
}

// Get returns the full entry for id from the structured index.
func (s *Store) Get(id string) (paper.Entry, bool) {
	return s.jsonl.Get(id)
}

// Entries returns all full entries sorted by ID.
func (s *Store) Entries() []paper.Entry {
	return s.jsonl.Entries()
}

// Upsert writes the same entry into both in-memory indexes, replacing any
// existing entry with that ID wholesale.
func (s *Store) Upsert(e paper.Entry) error {
	if e.ID == "" {
		return errors.New("upsert: empty id")
	}
	if err := paper.ValidateScore(e.Scores.Overall); err != nil {
		return fmt.Errorf("upsert %s: %w", e.ID, err)
	}

	e = e.Normalize()
	s.csv.Upsert(RowFromEntry(e))
	s.jsonl.Upsert(e)
	return nil
}

// ErrSkippedRecords is returned by Store.Save when the last load dropped
// malformed records. Rewriting the files would delete them from disk and
// leave the two indexes with different identifier sets.
var ErrSkippedRecords = errors.New("index has skipped records")

// Save rewrites the CSV index, then the JSONL index. It stops at the first
// failure and returns a *SaveError; nothing is retried. It refuses to write
// while either index has skipped records.
func (s *Store) Save() error {
	if err := s.Writable(); err != nil {
		return err
	}
	if err := s.csv.Save(); err != nil {
		return &SaveError{Representation: RepCSV, Path: s.csv.Path(), Err: err}
	}
	if err := s.jsonl.Save(); err != nil {
		return &SaveError{Representation: RepJSONL, Path: s.jsonl.Path(), Err: err}
	}
	return nil
}

// Writable returns an ErrSkippedRecords error when Save would refuse to
// write.
func (s *Store) Writable() error {
	if n := s.csv.Skipped(); n > 0 {
		return fmt.Errorf("%s: %d malformed rows: %w", s.csv.Path(), n, ErrSkippedRecords)
	}
	if n := s.jsonl.Skipped(); n > 0 {
		return fmt.Errorf("%s: %d malformed lines: %w", s.jsonl.Path(), n, ErrSkippedRecords)
	}
	return nil
}

// RegenerateCSV replaces every CSV row with the projection of the JSONL
// entry of the same ID and forgets the CSV rows skipped on load. Rows with
// no JSONL entry are dropped. Call Save to write the result.
func (s *Store) RegenerateCSV() {
	s.csv.rows = make(map[string]Row, s.jsonl.Len())
	s.csv.skipped = 0
	for _, e := range s.jsonl.Entries() {
		s.csv.Upsert(RowFromEntry(e))
	}
}
