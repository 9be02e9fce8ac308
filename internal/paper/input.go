package paper

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinScore     = 0.0
	MaxScore     = 5.0
	DefaultScore = 4.0
)

// ErrInvalidScore is returned for scores outside [MinScore, MaxScore].
var ErrInvalidScore = errors.New("invalid score")

// ParseTags splits a keyword string on commas and semicolons.
// Tokens are trimmed and empty tokens dropped; order and duplicates are kept.
func ParseTags(s string) []string {
	tags := []string{}
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if tok = strings.TrimSpace(tok); tok != "" {
			tags = append(tags, tok)
		}
	}
	return tags
}

// ValidateScore checks that an overall score lies within [MinScore, MaxScore].
func ValidateScore(score float64) error {
	if score != score || score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: %v out of range [%.0f, %.0f]", ErrInvalidScore, score, MinScore, MaxScore)
	}
	return nil
}

// FormatScore renders a score with the fixed two-decimal precision used by
// the tabular index and notes.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
