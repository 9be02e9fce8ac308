package conflict

import (
	"strings"

	"github.com/matsen/papernote/internal/paper"
)

// MatchPapers pairs entries across a region, by DOI first and then by ID.
// DOIs compare case-insensitively.
func MatchPapers(region Region) MatchResult {
	var result MatchResult

	oursByDOI := make(map[string]int)
	oursByID := make(map[string]int)
	for i, e := range region.Ours {
		if e.DOI != "" {
			oursByDOI[strings.ToLower(e.DOI)] = i
		}
		oursByID[e.ID] = i
	}

	oursMatched := make(map[int]bool)
	theirsMatched := make(map[int]bool)
	pair := func(oi, ti int, by string) {
		result.Matches = append(result.Matches, Match{
			Ours:      region.Ours[oi],
			Theirs:    region.Theirs[ti],
			MatchedBy: by,
		})
		oursMatched[oi] = true
		theirsMatched[ti] = true
	}

	for ti, theirs := range region.Theirs {
		if theirs.DOI == "" {
			continue
		}
		if oi, ok := oursByDOI[strings.ToLower(theirs.DOI)]; ok && !oursMatched[oi] {
			pair(oi, ti, "doi")
		}
	}

	for ti, theirs := range region.Theirs {
		if theirsMatched[ti] {
			continue
		}
		if oi, ok := oursByID[theirs.ID]; ok && !oursMatched[oi] {
			pair(oi, ti, "id")
		}
	}

	result.OursOnly = unmatched(region.Ours, oursMatched)
	result.TheirsOnly = unmatched(region.Theirs, theirsMatched)
	return result
}

func unmatched(entries []paper.Entry, matched map[int]bool) []paper.Entry {
	var out []paper.Entry
	for i, e := range entries {
		if !matched[i] {
			out = append(out, e)
		}
	}
	return out
}
