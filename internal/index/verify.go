package index

import (
	"github.com/matsen/papernote/internal/paper"
)

// Drift kinds reported by Verify.
const (
	DriftMissingCSV   = "missing_csv"
	DriftMissingJSONL = "missing_jsonl"
	DriftMismatch     = "mismatch"
)

// Drift describes one disagreement between the two indexes.
type Drift struct {
	ID     string   `json:"id"`
	Kind   string   `json:"kind"`
	Fields []string `json:"fields,omitempty"`
}

// Verify compares the two in-memory indexes and returns every identifier
// that is missing from one side or whose shared columns disagree.
func (s *Store) Verify() []Drift {
	var drifts []Drift
	for _, id := range s.IDs() {
		row, inCSV := s.csv.Get(id)
		entry, inJSONL := s.jsonl.Get(id)

		switch {
		case !inCSV:
			drifts = append(drifts, Drift{ID: id, Kind: DriftMissingCSV})
		case !inJSONL:
			drifts = append(drifts, Drift{ID: id, Kind: DriftMissingJSONL})
		default:
			if fields := diffRow(row, RowFromEntry(entry)); len(fields) > 0 {
				drifts = append(drifts, Drift{ID: id, Kind: DriftMismatch, Fields: fields})
			}
		}
	}
	return drifts
}

// diffRow lists the columns on which two rows differ. Scores are compared
// at the two-decimal precision of the CSV file.
func diffRow(a, b Row) []string {
	var fields []string
	if a.Title != b.Title {
		fields = append(fields, "title")
	}
	if a.Year != b.Year {
		fields = append(fields, "year")
	}
	if a.Venue != b.Venue {
		fields = append(fields, "venue")
	}
	if paper.FormatScore(a.Overall) != paper.FormatScore(b.Overall) {
		fields = append(fields, "overall")
	}
	// Lists compare as CSV cells: a name containing the separator is split
	// on reload, and that is not drift
	if listCell(a.Tags) != listCell(b.Tags) {
		fields = append(fields, "tags")
	}
	if listCell(a.Authors) != listCell(b.Authors) {
		fields = append(fields, "authors")
	}
	if a.PDF != b.PDF {
		fields = append(fields, "pdf")
	}
	return fields
}
