// Package conflict resolves git merge conflicts in papers.jsonl using what
// it knows about papers: DOIs identify them, one side may carry metadata the
// other lacks, and the more complete record usually wins.
package conflict

import (
	"fmt"

	"github.com/matsen/papernote/internal/paper"
)

// Region is one <<<<<<< ... ======= ... >>>>>>> block.
type Region struct {
	StartLine int // line of the <<<<<<< marker (1-indexed)
	EndLine   int // line of the >>>>>>> marker

	Ours   []paper.Entry
	Theirs []paper.Entry
}

// Match is a paper present on both sides of a region.
type Match struct {
	Ours      paper.Entry
	Theirs    paper.Entry
	MatchedBy string // "doi" or "id"
}

// FieldConflict is a field both sides set to different values.
type FieldConflict struct {
	Field  string
	Ours   string
	Theirs string
}

// Action is how a matched pair is resolved.
type Action string

const (
	ActionKeepOurs   Action = "keep_ours"
	ActionKeepTheirs Action = "keep_theirs"
	ActionMerge      Action = "merge"
	ActionAddOurs    Action = "add_ours"
	ActionAddTheirs  Action = "add_theirs"
	ActionConflict   Action = "conflict"
)

// Plan describes the resolution of one matched pair.
type Plan struct {
	ID        string
	DOI       string
	Action    Action
	Reason    string
	Conflicts []FieldConflict // set only for ActionConflict
}

// ParseError reports malformed markers or JSON in a conflicted file.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseResult is a conflicted papers.jsonl split into the entries outside
// any conflict and the conflict regions themselves.
type ParseResult struct {
	Clean     []paper.Entry
	Conflicts []Region
}

// MatchResult pairs up the entries of one region.
type MatchResult struct {
	Matches    []Match
	OursOnly   []paper.Entry
	TheirsOnly []paper.Entry
}
