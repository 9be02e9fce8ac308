package index

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/papernote/internal/paper"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestCSVIndex_LoadSkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), CSVFile)
	writeFile(t, path, `id,title,year,venue,overall,tags,authors,pdf
good,Good Paper,2020,Venue,4.50,a;b,"Smith, J;Doe, J",raw_pdf/good.pdf
short,Too Few Fields
,No Id,2020,V,1.00,,,x.pdf
badscore,Bad Score,2020,V,high,,,x.pdf
`)

	idx := NewCSVIndex(path)
	if err := idx.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := idx.IDs(); !reflect.DeepEqual(got, []string{"good"}) {
		t.Errorf("IDs() = %v, want [good]", got)
	}
	if idx.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", idx.Skipped())
	}

	row, _ := idx.Get("good")
	want := Row{
		ID:      "good",
		Title:   "Good Paper",
		Year:    "2020",
		Venue:   "Venue",
		Overall: 4.5,
		Tags:    []string{"a", "b"},
		Authors: []string{"Smith, J", "Doe, J"},
		PDF:     "raw_pdf/good.pdf",
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %+v, want %+v", row, want)
	}
}

func TestCSVIndex_LoadReordersColumnsByHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), CSVFile)
	writeFile(t, path, "\ufefftitle,id,overall\nA Title,a1,2.00\n")

	idx := NewCSVIndex(path)
	if err := idx.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	row, ok := idx.Get("a1")
	if !ok {
		t.Fatal("Get(a1) not found")
	}
	if row.Title != "A Title" || row.Overall != 2 || row.Year != paper.UnknownYear {
		t.Errorf("row = %+v", row)
	}
}

func TestCSVIndex_LoadWithoutIDColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), CSVFile)
	writeFile(t, path, "title,year\nX,2020\n")

	err := NewCSVIndex(path).Load()
	if !errors.Is(err, ErrNoIDColumn) {
		t.Errorf("Load() error = %v, want ErrNoIDColumn", err)
	}
}

func TestCSVIndex_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), CSVFile)
	writeFile(t, path, "")

	idx := NewCSVIndex(path)
	if err := idx.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
}

func TestCSVIndex_SaveFormatsScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), CSVFile)
	idx := NewCSVIndex(path)
	idx.Upsert(Row{ID: "x", Year: "2020", Overall: 4, Tags: []string{"a", "b"}, Authors: []string{"A"}})
	if err := idx.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	want := "id,title,year,venue,overall,tags,authors,pdf\nx,,2020,,4.00,a;b,A,\n"
	if string(data) != want {
		t.Errorf("csv =\n%q\nwant\n%q", data, want)
	}
}

func TestJSONLIndex_LoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), JSONLFile)
	writeFile(t, path, `{"id":"a","title":"A","year":2020,"scores":{"overall":3}}
not json at all

{"title":"no id"}
{"id":"b","title":"B","year":"in press"}
{"id":"c","year":{"bad":true}}
`)

	idx := NewJSONLIndex(path)
	if err := idx.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := idx.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
	if idx.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", idx.Skipped())
	}

	a, _ := idx.Get("a")
	if a.Year != "2020" || a.Scores.Overall != 3 || a.Tags == nil {
		t.Errorf("entry a = %+v", a)
	}
	b, _ := idx.Get("b")
	if b.Year != "in press" {
		t.Errorf("entry b year = %q, want %q", b.Year, "in press")
	}
}

func TestJSONLIndex_SaveKeepsUnicodeAndHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), JSONLFile)
	idx := NewJSONLIndex(path)
	idx.Upsert(paper.Entry{ID: "k", Title: "딥러닝 <intro> & more"})
	if err := idx.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading jsonl: %v", err)
	}
	for _, want := range []string{`"title":"딥러닝 <intro> & more"`, `"year":"unknown"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("jsonl = %s, missing %s", data, want)
		}
	}
}

func TestWriteFileAtomic_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "file.txt")
	if err := writeFileAtomic(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("writeFileAtomic() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "file.txt" {
		t.Errorf("directory contents = %v, want only file.txt", entries)
	}
}
