package conflict

import (
	"slices"
	"strings"

	"github.com/matsen/papernote/internal/paper"
)

// Field completeness weights (higher = more important)
const (
	weightSummary = 5
	weightAuthors = 4
	weightVenue   = 3
	weightYear    = 2
	weightDOI     = 1
)

// Field names used in conflicts, matching the JSONL keys.
const (
	FieldYear    = "year"
	FieldAuthors = "authors"
	FieldOverall = "overall"
	FieldPDF     = "pdf"
)

type stringField struct {
	name string
	ptr  func(*paper.Entry) *string
}

// stringFields merge independently. pdf_sha256 is absent: it follows pdf.
var stringFields = []stringField{
	{"title", func(e *paper.Entry) *string { return &e.Title }},
	{"venue", func(e *paper.Entry) *string { return &e.Venue }},
	{"path", func(e *paper.Entry) *string { return &e.NotePath }},
	{FieldPDF, func(e *paper.Entry) *string { return &e.PDF }},
	{"keywords", func(e *paper.Entry) *string { return &e.Keywords }},
	{"summary", func(e *paper.Entry) *string { return &e.Summary }},
	{"comment", func(e *paper.Entry) *string { return &e.Comment }},
	{"doi", func(e *paper.Entry) *string { return &e.DOI }},
	{"url", func(e *paper.Entry) *string { return &e.URL }},
	{"bibtex_key", func(e *paper.Entry) *string { return &e.BibTeXKey }},
}

// Resolve decides how a matched pair is resolved.
func Resolve(match Match) Plan {
	plan := Plan{
		ID:  match.Ours.ID,
		DOI: nonEmpty(match.Ours.DOI, match.Theirs.DOI),
	}

	if _, conflicts := Merge(match.Ours, match.Theirs); len(conflicts) > 0 {
		plan.Action = ActionConflict
		plan.Conflicts = conflicts
		plan.Reason = "true conflicts on: " + fieldNames(conflicts)
		return plan
	}

	if isComplementary(match.Ours, match.Theirs) {
		plan.Action = ActionMerge
		plan.Reason = "complementary metadata merged"
		return plan
	}

	oursScore := Completeness(match.Ours)
	theirsScore := Completeness(match.Theirs)
	if oursScore == theirsScore {
		switch oa, ta := len(match.Ours.Authors), len(match.Theirs.Authors); {
		case ta > oa:
			plan.Action, plan.Reason = ActionKeepTheirs, "theirs has more authors"
			return plan
		case oa > ta:
			plan.Action, plan.Reason = ActionKeepOurs, "ours has more authors"
			return plan
		}
	}

	switch {
	case oursScore > theirsScore:
		plan.Action, plan.Reason = ActionKeepOurs, "ours is more complete"
	case theirsScore > oursScore:
		plan.Action, plan.Reason = ActionKeepTheirs, "theirs is more complete"
	default:
		plan.Action, plan.Reason = ActionKeepOurs, "identical content, keeping ours"
	}
	return plan
}

// isComplementary reports whether each side has a field the other lacks.
func isComplementary(ours, theirs paper.Entry) bool {
	oursExtra, theirsExtra := false, false
	note := func(o, t bool) {
		oursExtra = oursExtra || (o && !t)
		theirsExtra = theirsExtra || (t && !o)
	}

	for _, f := range stringFields {
		note(*f.ptr(&ours) != "", *f.ptr(&theirs) != "")
	}
	note(ours.Year.Known(), theirs.Year.Known())
	note(len(ours.Authors) > 0, len(theirs.Authors) > 0)
	note(len(ours.Tags) > 0, len(theirs.Tags) > 0)

	return oursExtra && theirsExtra
}

// Merge combines two versions of an entry. Fields set on only one side
// are taken from it; tags are unioned; the longer author list wins.
// Fields set to different values on both sides are returned as conflicts
// and left at the ours value in the merged entry.
func Merge(ours, theirs paper.Entry) (paper.Entry, []FieldConflict) {
	merged := ours
	var conflicts []FieldConflict

	for _, f := range stringFields {
		o, t := *f.ptr(&ours), *f.ptr(&theirs)
		switch {
		case o == "" || o == t:
		case t == "":
		default:
			conflicts = append(conflicts, FieldConflict{Field: f.name, Ours: o, Theirs: t})
			continue
		}
		*f.ptr(&merged) = nonEmpty(o, t)
	}
	merged.PDFSHA256 = checksumFor(merged.PDF, ours, theirs)

	switch {
	case !ours.Year.Known():
		merged.Year = theirs.Year
	case theirs.Year.Known() && ours.Year != theirs.Year:
		conflicts = append(conflicts, FieldConflict{Field: FieldYear, Ours: string(ours.Year), Theirs: string(theirs.Year)})
	}

	authors, ok := mergeAuthors(ours.Authors, theirs.Authors)
	if ok {
		merged.Authors = authors
	} else {
		conflicts = append(conflicts, FieldConflict{
			Field:  FieldAuthors,
			Ours:   strings.Join(ours.Authors, "; "),
			Theirs: strings.Join(theirs.Authors, "; "),
		})
	}

	merged.Tags = unionStrings(ours.Tags, theirs.Tags)

	if ours.Scores.Overall != theirs.Scores.Overall {
		conflicts = append(conflicts, FieldConflict{
			Field:  FieldOverall,
			Ours:   paper.FormatScore(ours.Scores.Overall),
			Theirs: paper.FormatScore(theirs.Scores.Overall),
		})
	}

	return merged.Normalize(), conflicts
}

// checksumFor keeps pdf_sha256 paired with the pdf it describes.
func checksumFor(pdf string, ours, theirs paper.Entry) string {
	if pdf == ours.PDF && ours.PDFSHA256 != "" {
		return ours.PDFSHA256
	}
	if pdf == theirs.PDF && theirs.PDFSHA256 != "" {
		return theirs.PDFSHA256
	}
	return ""
}

// mergeAuthors returns the longer list. Equal-length lists must agree
// ignoring case.
func mergeAuthors(ours, theirs []string) ([]string, bool) {
	switch {
	case len(ours) > len(theirs):
		return ours, true
	case len(theirs) > len(ours):
		return theirs, true
	}
	for i := range ours {
		if !strings.EqualFold(ours[i], theirs[i]) {
			return nil, false
		}
	}
	return ours, true
}

// Choose copies the named field from source into target. Choosing pdf
// also takes its checksum.
func Choose(target *paper.Entry, field string, source paper.Entry) {
	for _, f := range stringFields {
		if f.name == field {
			*f.ptr(target) = *f.ptr(&source)
		}
	}
	switch field {
	case FieldPDF:
		target.PDFSHA256 = source.PDFSHA256
	case FieldYear:
		target.Year = source.Year
	case FieldAuthors:
		target.Authors = slices.Clone(source.Authors)
	case FieldOverall:
		target.Scores = source.Scores
	}
}

// Completeness scores how much metadata an entry carries.
func Completeness(e paper.Entry) int {
	score := 0
	if e.Summary != "" {
		score += weightSummary
	}
	if len(e.Authors) > 0 {
		score += weightAuthors
	}
	if e.Venue != "" {
		score += weightVenue
	}
	if e.Year.Known() {
		score += weightYear
	}
	if e.DOI != "" {
		score += weightDOI
	}
	return score
}

// Apply produces the resolved entry for a plan. A conflict plan yields the
// merged entry with ours on every conflicting field; callers override them
// with Choose.
func Apply(match Match, plan Plan) paper.Entry {
	switch plan.Action {
	case ActionKeepTheirs:
		return match.Theirs
	case ActionMerge, ActionConflict:
		merged, _ := Merge(match.Ours, match.Theirs)
		return merged
	default:
		return match.Ours
	}
}

func unionStrings(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func fieldNames(conflicts []FieldConflict) string {
	names := make([]string, len(conflicts))
	for i, c := range conflicts {
		names[i] = c.Field
	}
	return strings.Join(names, ", ")
}
