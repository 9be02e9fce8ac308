package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/note"
	"github.com/matsen/papernote/internal/paper"
)

// sha256("abc")
const abcSHA = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func setupLibrary(t *testing.T, entries ...paper.Entry) (string, *index.Store) {
	t.Helper()
	root := t.TempDir()
	if err := initLibrary(root); err != nil {
		t.Fatalf("initLibrary() error = %v", err)
	}

	store, err := index.Open(config.IndexPath(root))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if err := store.Upsert(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Save(); err != nil {
		t.Fatal(err)
	}
	return root, store
}

func TestInitLibrary(t *testing.T) {
	root, store := setupLibrary(t)

	if !config.IsLibrary(root) {
		t.Error("IsLibrary() = false after initLibrary")
	}
	for _, p := range []string{
		config.ConfigPath(root),
		config.RawPath(root),
		config.NotesPath(root),
		filepath.Join(config.IndexPath(root), index.CSVFile),
		filepath.Join(config.IndexPath(root), index.JSONLFile),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
	if n := len(store.IDs()); n != 0 {
		t.Errorf("new library has %d papers, want 0", n)
	}
}

func TestCollectIssues_Clean(t *testing.T) {
	e := paper.Entry{
		ID:        "2020-Smith-Clean",
		Title:     "Clean",
		Year:      "2020",
		Authors:   []string{"Smith, J."},
		Scores:    paper.Scores{Overall: 4},
		NotePath:  note.Path("2020-Smith-Clean"),
		PDF:       "raw_pdf/clean.pdf",
		PDFSHA256: abcSHA,
		DOI:       "10.1/clean",
	}
	root, store := setupLibrary(t, e)
	writeFile(t, filepath.Join(root, "raw_pdf", "clean.pdf"), "abc")
	writeFile(t, filepath.Join(root, "notes", "2020-Smith-Clean.md"), "---\n---\n")

	issues, err := collectIssues(root, store, true)
	if err != nil {
		t.Fatalf("collectIssues() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("collectIssues() = %+v, want no issues", issues)
	}
}

func TestCollectIssues_Problems(t *testing.T) {
	changed := paper.Entry{
		ID:        "2020-Smith-Changed",
		Scores:    paper.Scores{Overall: 4},
		PDF:       "raw_pdf/changed.pdf",
		PDFSHA256: abcSHA,
		DOI:       "10.1/SAME",
	}
	missing := paper.Entry{
		ID:     "2021-Jones-Missing",
		Scores: paper.Scores{Overall: 3},
		PDF:    "raw_pdf/gone.pdf",
		DOI:    "10.1/same",
	}
	root, store := setupLibrary(t, changed, missing)
	writeFile(t, filepath.Join(root, "raw_pdf", "changed.pdf"), "abcd")
	writeFile(t, filepath.Join(root, "notes", "2020-Smith-Changed.md"), "")
	writeFile(t, filepath.Join(root, "notes", "1999-Orphan-Note.md"), "")

	issues, err := collectIssues(root, store, true)
	if err != nil {
		t.Fatalf("collectIssues() error = %v", err)
	}

	got := make(map[string][]string)
	for _, issue := range issues {
		id := issue.ID
		if issue.Type == "duplicate_doi" {
			id = issue.DOI
		}
		got[issue.Type] = append(got[issue.Type], id)
	}

	want := map[string][]string{
		"checksum_mismatch": {"2020-Smith-Changed"},
		"missing_pdf":       {"2021-Jones-Missing"},
		"missing_note":      {"2021-Jones-Missing"},
		"orphan_note":       {"1999-Orphan-Note"},
		"duplicate_doi":     {"10.1/same"},
	}
	for typ, ids := range want {
		if !slices.Equal(got[typ], ids) {
			t.Errorf("issues of type %s = %v, want %v", typ, got[typ], ids)
		}
	}
	if len(got) != len(want) {
		t.Errorf("issue types = %v, want exactly %d types", got, len(want))
	}

	// Skipping hashes drops only the checksum check
	issues, err = collectIssues(root, store, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, issue := range issues {
		if issue.Type == "checksum_mismatch" {
			t.Error("checksum_mismatch reported with hashing disabled")
		}
	}
}

func TestCollectIssues_IndexDrift(t *testing.T) {
	root, _ := setupLibrary(t, paper.Entry{ID: "2020-Smith-Drift", Title: "Drift", Scores: paper.Scores{Overall: 4}})
	writeFile(t, filepath.Join(root, "notes", "2020-Smith-Drift.md"), "")

	// Only the JSONL side learns about the second paper
	jsonl := index.NewJSONLIndex(filepath.Join(config.IndexPath(root), index.JSONLFile))
	if err := jsonl.Load(); err != nil {
		t.Fatal(err)
	}
	jsonl.Upsert(paper.Entry{ID: "2021-Jones-OneSided", Scores: paper.Scores{Overall: 4}}.Normalize())
	if err := jsonl.Save(); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "notes", "2021-Jones-OneSided.md"), "")

	store, err := index.Open(config.IndexPath(root))
	if err != nil {
		t.Fatal(err)
	}
	issues, err := collectIssues(root, store, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Type != index.DriftMissingCSV || issues[0].ID != "2021-Jones-OneSided" {
		t.Errorf("collectIssues() = %+v, want one missing_csv for 2021-Jones-OneSided", issues)
	}
}

func TestDescribeIssue(t *testing.T) {
	tests := []struct {
		issue CheckIssue
		want  string
	}{
		{CheckIssue{Type: "missing_pdf", ID: "x", Path: "raw_pdf/x.pdf"}, "x: missing pdf (raw_pdf/x.pdf)"},
		{CheckIssue{Type: index.DriftMissingCSV, ID: "x"}, "x: missing csv"},
		{CheckIssue{Type: index.DriftMismatch, ID: "x", Fields: []string{"title", "year"}}, "x: indexes disagree on title, year"},
		{CheckIssue{Type: "duplicate_doi", DOI: "10.1/a", IDs: []string{"a", "b"}}, "DOI 10.1/a shared by a, b"},
		{CheckIssue{Type: "skipped_records", Path: "index/papers.csv", Count: 2}, "index/papers.csv: 2 malformed records skipped"},
	}
	for _, tt := range tests {
		if got := describeIssue(tt.issue); got != tt.want {
			t.Errorf("describeIssue(%+v) = %q, want %q", tt.issue, got, tt.want)
		}
	}
}

func TestFixCSV(t *testing.T) {
	root, _ := setupLibrary(t,
		paper.Entry{ID: "2020-Smith-Kept", Title: "Kept", Scores: paper.Scores{Overall: 3}},
		paper.Entry{ID: "2021-Jones-Other", Title: "Other", Scores: paper.Scores{Overall: 4}},
	)
	csvPath := filepath.Join(config.IndexPath(root), index.CSVFile)
	writeFile(t, csvPath, "id,title,year,venue,overall,tags,authors,pdf\n2020-Smith-Kept,Kept,unknown,,\"3,00\",,,\n")

	store, err := index.Open(config.IndexPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if err := fixCSV(store); err != nil {
		t.Fatalf("fixCSV() error = %v", err)
	}

	reloaded, err := index.Open(config.IndexPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if n := reloaded.CSV().Skipped(); n != 0 {
		t.Errorf("CSV().Skipped() = %d after fix, want 0", n)
	}
	if drifts := reloaded.Verify(); len(drifts) != 0 {
		t.Errorf("Verify() = %+v after fix, want none", drifts)
	}
}

func TestFixCSV_NeedsCleanJSONL(t *testing.T) {
	root, _ := setupLibrary(t)
	writeFile(t, filepath.Join(config.IndexPath(root), index.JSONLFile), "{broken\n")

	store, err := index.Open(config.IndexPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if err := fixCSV(store); exitCodeFor(err) != ExitDataError {
		t.Errorf("fixCSV() error = %v, want a data error", err)
	}
}
