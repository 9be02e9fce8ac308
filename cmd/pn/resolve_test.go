package main

import (
	"io"
	"strings"
	"testing"

	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/conflict"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/ingest"
)

const conflictedJSONL = `{"id":"2019-Devlin-Bert","title":"BERT","year":2019}
<<<<<<< HEAD
{"id":"2020-Brown-Gpt3","title":"GPT-3","venue":"NeurIPS","scores":{"overall":4}}
{"id":"2021-Chen-Codex","title":"Codex","venue":"arXiv","scores":{"overall":4}}
=======
{"id":"2020-Brown-Gpt3","title":"GPT-3","summary":"Few-shot.","scores":{"overall":4}}
{"id":"2021-Chen-Codex","title":"Codex","venue":"ICML","scores":{"overall":4}}
{"id":"2022-Ouyang-Instruct","title":"InstructGPT","scores":{"overall":3}}
>>>>>>> feature
`

func TestResolveConflicts_Unresolved(t *testing.T) {
	parsed, err := conflict.ParseString(conflictedJSONL)
	if err != nil {
		t.Fatal(err)
	}

	result, _, err := resolveConflicts(parsed, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.Merged != 1 || result.TheirsPapers != 1 {
		t.Errorf("Merged = %d, TheirsPapers = %d, want 1 and 1", result.Merged, result.TheirsPapers)
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0].ID != "2021-Chen-Codex" {
		t.Fatalf("Unresolved = %+v, want 2021-Chen-Codex", result.Unresolved)
	}
	if got := result.Unresolved[0].Fields; len(got) != 1 || got[0] != "venue" {
		t.Errorf("Unresolved fields = %v, want [venue]", got)
	}
}

func TestResolveConflicts_Interactive(t *testing.T) {
	parsed, err := conflict.ParseString(conflictedJSONL)
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	// First answer is rejected, second picks theirs
	prompter := ingest.NewLinePrompter(strings.NewReader("9\n2\n"), &out)

	result, entries, err := resolveConflicts(parsed, prompter)
	if err != nil {
		t.Fatalf("resolveConflicts() error = %v", err)
	}
	if len(result.Unresolved) != 0 {
		t.Errorf("Unresolved = %+v, want none", result.Unresolved)
	}
	if result.TotalPapers != 4 {
		t.Errorf("TotalPapers = %d, want 4", result.TotalPapers)
	}

	root, _ := setupLibrary(t)
	if err := writeResolved(config.IndexPath(root), entries); err != nil {
		t.Fatalf("writeResolved() error = %v", err)
	}
	store, err := index.Open(config.IndexPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if drifts := store.Verify(); len(drifts) != 0 {
		t.Errorf("Verify() = %+v after resolve, want none", drifts)
	}

	codex, _ := store.Get("2021-Chen-Codex")
	if codex.Venue != "ICML" {
		t.Errorf("Codex venue = %q, want ICML", codex.Venue)
	}
	gpt3, _ := store.Get("2020-Brown-Gpt3")
	if gpt3.Venue != "NeurIPS" || gpt3.Summary != "Few-shot." {
		t.Errorf("GPT-3 = %+v, want merged venue and summary", gpt3)
	}
	if !strings.Contains(out.String(), "Please enter") {
		t.Errorf("prompt output %q does not reject the invalid choice", out.String())
	}
}

func TestResolveConflicts_InputClosed(t *testing.T) {
	parsed, err := conflict.ParseString(conflictedJSONL)
	if err != nil {
		t.Fatal(err)
	}

	prompter := ingest.NewLinePrompter(strings.NewReader(""), io.Discard)
	if _, _, err := resolveConflicts(parsed, prompter); err == nil {
		t.Error("resolveConflicts() error = nil with closed input")
	}
}
