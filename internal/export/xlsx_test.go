package export

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/matsen/papernote/internal/paper"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	entries := []paper.Entry{
		{
			ID:      "2023-Smith-DeepLearningForEveryone",
			Title:   "Deep Learning for Everyone",
			Year:    "2023",
			Venue:   "JMLR",
			Scores:  paper.Scores{Overall: 4.5},
			Tags:    []string{"nlp", "ml"},
			Authors: []string{"Smith, John", "Doe, Jane"},
		},
		{ID: "YYYY-Anon-Untitled", Title: "Untitled", Year: paper.UnknownYear},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, entries); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if !reflect.DeepEqual(rows[0], xlsxColumns) {
		t.Errorf("header = %v, want %v", rows[0], xlsxColumns)
	}

	want := []string{"2023-Smith-DeepLearningForEveryone", "Deep Learning for Everyone", "2023", "JMLR", "4.5", "nlp; ml", "Smith, John; Doe, Jane"}
	if !reflect.DeepEqual(rows[1][:len(want)], want) {
		t.Errorf("row 1 = %v, want prefix %v", rows[1], want)
	}
	if rows[2][2] != "unknown" {
		t.Errorf("unknown year cell = %q", rows[2][2])
	}
}
