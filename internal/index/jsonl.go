package index

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/matsen/papernote/internal/paper"
)

// JSONLIndex is the structured representation of the library: one
// self-contained JSON object per line.
type JSONLIndex struct {
	path    string
	entries map[string]paper.Entry
	skipped int
	logger  *slog.Logger
}

// NewJSONLIndex creates an empty JSONL index backed by path. Call Load to
// read existing entries.
func NewJSONLIndex(path string, opts ...Option) *JSONLIndex {
	o := buildOptions(opts)
	return &JSONLIndex{path: path, entries: make(map[string]paper.Entry), logger: o.logger}
}

// Path returns the backing file path.
func (j *JSONLIndex) Path() string {
	return j.path
}

// Load replaces the in-memory entries with the file contents.
// A missing file is an empty index. Lines that are not valid JSON or lack an
// id are skipped with a warning.
func (j *JSONLIndex) Load() error {
	j.entries = make(map[string]paper.Entry)
	j.skipped = 0

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Empty file returns empty index
		}
		return fmt.Errorf("opening jsonl index: %w", err)
	}
	defer f.Close()

	// No line length limit: Save writes entries of any size
	reader := bufio.NewReader(f)

	lineNum := 0
	for {
		raw, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("reading jsonl index: %w", readErr)
		}
		if len(raw) > 0 {
			lineNum++
			j.loadLine(bytes.TrimSpace(raw), lineNum)
		}
		if readErr == io.EOF {
			return nil
		}
	}
}

func (j *JSONLIndex) loadLine(line []byte, lineNum int) {
	if len(line) == 0 {
		return
	}

	var e paper.Entry
	if err := json.Unmarshal(line, &e); err != nil {
		j.skip("unparsable jsonl line", "line", lineNum, "error", err)
		return
	}
	if e.ID == "" {
		j.skip("jsonl line has no id", "line", lineNum)
		return
	}
	j.entries[e.ID] = e.Normalize()
}

func (j *JSONLIndex) skip(msg string, args ...any) {
	j.skipped++
	j.logger.Warn(msg, append([]any{"path", j.path}, args...)...)
}

// Skipped returns the number of lines dropped by the last Load.
func (j *JSONLIndex) Skipped() int {
	return j.skipped
}

// Upsert inserts the entry or replaces the existing entry with the same ID.
func (j *JSONLIndex) Upsert(e paper.Entry) {
	j.entries[e.ID] = e.Normalize()
}

// Get returns the entry for id.
func (j *JSONLIndex) Get(id string) (paper.Entry, bool) {
	e, ok := j.entries[id]
	return e, ok
}

// IDs returns all identifiers in ascending order.
func (j *JSONLIndex) IDs() []string {
	return sortedKeys(j.entries)
}

// Entries returns all entries sorted by ID.
func (j *JSONLIndex) Entries() []paper.Entry {
	entries := make([]paper.Entry, 0, len(j.entries))
	for _, id := range j.IDs() {
		entries = append(entries, j.entries[id])
	}
	return entries
}

// Len returns the number of entries.
func (j *JSONLIndex) Len() int {
	return len(j.entries)
}

// Save rewrites the whole file, one entry per line sorted by ID.
func (j *JSONLIndex) Save() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, e := range j.Entries() {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encoding entry %s: %w", e.ID, err)
		}
	}

	return writeFileAtomic(j.path, buf.Bytes(), 0644)
}
