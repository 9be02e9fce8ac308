package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/papernote/internal/paper"
)

const (
	DefaultListLimit = 50

	ListTitleMaxLen   = 50
	SearchTitleMaxLen = 70
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// PapersResponse wraps entry lists so empty results print as [].
type PapersResponse struct {
	Count  int           `json:"count"`
	Papers []paper.Entry `json:"papers"`
}

func papersResponse(entries []paper.Entry) PapersResponse {
	if entries == nil {
		entries = []paper.Entry{}
	}
	return PapersResponse{Count: len(entries), Papers: entries}
}

// printEntryLine prints the one-line human summary of an entry.
func printEntryLine(e paper.Entry, titleLen int) {
	fmt.Printf("%-40s  %s  %s  %s\n",
		e.ID, paper.FormatScore(e.Scores.Overall), e.Year, truncateString(e.Title, titleLen))
}

// printEntryDetail prints every field of an entry for humans.
func printEntryDetail(e paper.Entry) {
	fmt.Printf("%s\n", e.Title)
	fmt.Printf("  id:       %s\n", e.ID)
	fmt.Printf("  authors:  %s\n", strings.Join(e.Authors, "; "))
	fmt.Printf("  year:     %s\n", e.Year)
	if e.Venue != "" {
		fmt.Printf("  venue:    %s\n", e.Venue)
	}
	fmt.Printf("  score:    %s\n", paper.FormatScore(e.Scores.Overall))
	if len(e.Tags) > 0 {
		fmt.Printf("  tags:     %s\n", strings.Join(e.Tags, ", "))
	}
	if e.DOI != "" {
		fmt.Printf("  doi:      %s\n", e.DOI)
	}
	fmt.Printf("  pdf:      %s\n", e.PDF)
	fmt.Printf("  note:     %s\n", e.NotePath)
	if e.Summary != "" {
		fmt.Printf("\n%s\n", wrapText(e.Summary, 72))
	}
}

// truncateString shortens s to at most maxLen runes, marking the cut.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text at word boundaries to the given width.
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
