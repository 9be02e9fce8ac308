package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/paper"
)

var testEntries = []paper.Entry{
	{
		ID:        "2023-Smith-DeepLearningForEveryone",
		Title:     "Deep Learning for Everyone",
		Year:      "2023",
		Venue:     "JMLR",
		Scores:    paper.Scores{Overall: 4.5},
		Tags:      []string{"ML", "survey"},
		Authors:   []string{"Smith, John", "Doe, Jane"},
		NotePath:  "notes/2023-Smith-DeepLearningForEveryone.md",
		PDF:       "raw_pdf/smith.pdf",
		PDFSHA256: "aa",
		Keywords:  "neural networks",
		Summary:   "An accessible survey of deep learning.",
		DOI:       "10.1234/smith",
	},
	{
		ID:       "2019-Devlin-BertPreTraining",
		Title:    "BERT: Pre-training of Deep Bidirectional Transformers",
		Year:     "2019",
		Venue:    "NAACL",
		Scores:   paper.Scores{Overall: 5},
		Tags:     []string{"nlp"},
		Authors:  []string{"Devlin, Jacob"},
		Keywords: "language models",
		Summary:  "Masked language model pretraining.",
	},
	{
		ID:      "YYYY-Anon-Untitled",
		Year:    paper.UnknownYear,
		Scores:  paper.Scores{Overall: 1},
		Tags:    []string{},
		Authors: []string{},
	},
}

// setupTestDB writes testEntries to a papers.jsonl and rebuilds a fresh
// cache from it.
func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := index.Open(dir)
	if err != nil {
		t.Fatalf("index.Open() error = %v", err)
	}
	for _, e := range testEntries {
		if err := store.Upsert(e); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	db, err := OpenDB(filepath.Join(dir, "papers.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := db.RebuildFromJSONL(store.JSONL().Path())
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if n != len(testEntries) {
		t.Fatalf("RebuildFromJSONL() = %d, want %d", n, len(testEntries))
	}
	return db, dir
}

func ids(entries []paper.Entry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestOpenDB_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("OpenDB() did not create database file: %v", err)
	}
}

func TestDB_GetByID_FullEntry(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.GetByID(testEntries[0].ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByID() returned nil")
	}
	if !reflect.DeepEqual(*got, testEntries[0].Normalize()) {
		t.Errorf("GetByID() = %+v\nwant %+v", *got, testEntries[0])
	}

	missing, err := db.GetByID("nope")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestDB_Rebuild_Replaces(t *testing.T) {
	db, _ := setupTestDB(t)

	n, err := db.Rebuild(testEntries[:1])
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Rebuild() = %d, want 1", n)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Count() after rebuild = %d, want 1", count)
	}

	results, _ := db.Search("bert", 0)
	if len(results) != 0 {
		t.Errorf("stale FTS rows survived rebuild: %v", ids(results))
	}
}

func TestDB_Search(t *testing.T) {
	db, _ := setupTestDB(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"survey", []string{"2023-Smith-DeepLearningForEveryone"}},
		{"devlin", []string{"2019-Devlin-BertPreTraining"}},
		{"language models", []string{"2019-Devlin-BertPreTraining"}},
		{"BERT: Pre-training", []string{"2019-Devlin-BertPreTraining"}},
		{"nlp", []string{"2019-Devlin-BertPreTraining"}},
		{"quantum", []string{}},
		{"   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestDB_List(t *testing.T) {
	db, _ := setupTestDB(t)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"2019-Devlin-BertPreTraining", "2023-Smith-DeepLearningForEveryone", "YYYY-Anon-Untitled"}},
		{"limit", ListFilter{Limit: 1}, []string{"2019-Devlin-BertPreTraining"}},
		{"tag case-insensitive", ListFilter{Tag: "ml"}, []string{"2023-Smith-DeepLearningForEveryone"}},
		{"year", ListFilter{Year: "2019"}, []string{"2019-Devlin-BertPreTraining"}},
		{"unknown year", ListFilter{Year: "unknown"}, []string{"YYYY-Anon-Untitled"}},
		{"no match", ListFilter{Tag: "nlp", Year: "2023"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.List(tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("List(%+v) = %v, want %v", tt.filter, ids(got), tt.want)
			}
		})
	}
}

func TestDB_RebuildFromJSONL_MissingFile(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	n, err := db.RebuildFromJSONL(filepath.Join(t.TempDir(), "papers.jsonl"))
	if err != nil || n != 0 {
		t.Errorf("RebuildFromJSONL(missing) = %d, %v; want 0, nil", n, err)
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deep learning", "deep learning"},
		{"  padded ", "padded"},
		{"BERT: pre-training", `"BERT: pre-training"`},
		{`say "hi"`, `"say ""hi"""`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.in); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
