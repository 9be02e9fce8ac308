package conflict

import (
	"testing"

	"github.com/matsen/papernote/internal/paper"
)

func TestMatchPapers(t *testing.T) {
	region := Region{
		Ours: []paper.Entry{
			{ID: "2019-Devlin-Bert", DOI: "10.1/BERT"},
			{ID: "2020-Brown-Gpt3"},
			{ID: "2022-Ours-Only"},
		},
		Theirs: []paper.Entry{
			{ID: "2019-Devlin-Bert-2", DOI: "10.1/bert"},
			{ID: "2020-Brown-Gpt3"},
			{ID: "2023-Theirs-Only"},
		},
	}

	result := MatchPapers(region)

	if len(result.Matches) != 2 {
		t.Fatalf("len(Matches) = %d, want 2", len(result.Matches))
	}
	if m := result.Matches[0]; m.MatchedBy != "doi" || m.Ours.ID != "2019-Devlin-Bert" || m.Theirs.ID != "2019-Devlin-Bert-2" {
		t.Errorf("Matches[0] = %+v, want DOI match of the BERT entries", m)
	}
	if m := result.Matches[1]; m.MatchedBy != "id" || m.Ours.ID != "2020-Brown-Gpt3" {
		t.Errorf("Matches[1] = %+v, want ID match of 2020-Brown-Gpt3", m)
	}
	if len(result.OursOnly) != 1 || result.OursOnly[0].ID != "2022-Ours-Only" {
		t.Errorf("OursOnly = %+v", result.OursOnly)
	}
	if len(result.TheirsOnly) != 1 || result.TheirsOnly[0].ID != "2023-Theirs-Only" {
		t.Errorf("TheirsOnly = %+v", result.TheirsOnly)
	}
}

func TestMatchPapers_EachEntryMatchedOnce(t *testing.T) {
	// theirs[1] shares an ID with ours[0], which is already taken by DOI
	region := Region{
		Ours:   []paper.Entry{{ID: "a", DOI: "10.1/x"}},
		Theirs: []paper.Entry{{ID: "b", DOI: "10.1/x"}, {ID: "a"}},
	}

	result := MatchPapers(region)
	if len(result.Matches) != 1 {
		t.Fatalf("len(Matches) = %d, want 1", len(result.Matches))
	}
	if len(result.TheirsOnly) != 1 || result.TheirsOnly[0].ID != "a" {
		t.Errorf("TheirsOnly = %+v, want the unmatched a", result.TheirsOnly)
	}
}
