package conflict

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/matsen/papernote/internal/paper"
)

type parserState int

const (
	stateNormal parserState = iota
	stateInOurs
	stateInTheirs
)

const (
	oursMarker      = "<<<<<<<"
	separatorMarker = "======="
	theirsMarker    = ">>>>>>>"
)

// Parse reads a possibly conflicted papers.jsonl. Unlike the index loader
// it rejects malformed lines, since the resolved file is written back.
func Parse(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	result := &ParseResult{}

	state := stateNormal
	lineNum := 0
	var region *Region

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		marker := ""
		for _, m := range []string{oursMarker, separatorMarker, theirsMarker} {
			if strings.HasPrefix(line, m) {
				marker = m
			}
		}

		switch {
		case state == stateNormal && marker == oursMarker:
			region = &Region{StartLine: lineNum}
			state = stateInOurs
		case state == stateNormal && marker != "":
			return nil, ParseError{Line: lineNum, Message: "conflict marker outside conflict region"}
		case state == stateNormal:
			e, ok, err := parseLine(line, lineNum)
			if err != nil {
				return nil, err
			}
			if ok {
				result.Clean = append(result.Clean, e)
			}

		case marker == oursMarker:
			return nil, ParseError{Line: lineNum, Message: "nested conflict markers not allowed"}

		case state == stateInOurs && marker == separatorMarker:
			state = stateInTheirs
		case state == stateInOurs && marker == theirsMarker:
			return nil, ParseError{Line: lineNum, Message: "end marker before separator"}
		case state == stateInOurs:
			e, ok, err := parseLine(line, lineNum)
			if err != nil {
				return nil, err
			}
			if ok {
				region.Ours = append(region.Ours, e)
			}

		case marker == separatorMarker:
			return nil, ParseError{Line: lineNum, Message: "duplicate separator in conflict region"}
		case marker == theirsMarker:
			region.EndLine = lineNum
			result.Conflicts = append(result.Conflicts, *region)
			region = nil
			state = stateNormal
		default:
			e, ok, err := parseLine(line, lineNum)
			if err != nil {
				return nil, err
			}
			if ok {
				region.Theirs = append(region.Theirs, e)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state != stateNormal {
		return nil, ParseError{Line: lineNum, Message: "unterminated conflict region at end of file"}
	}
	return result, nil
}

func parseLine(line string, lineNum int) (paper.Entry, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return paper.Entry{}, false, nil
	}

	var e paper.Entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return paper.Entry{}, false, ParseError{Line: lineNum, Message: "invalid JSON: " + err.Error()}
	}
	if e.ID == "" {
		return paper.Entry{}, false, ParseError{Line: lineNum, Message: "entry has no id"}
	}
	return e.Normalize(), true, nil
}

// ParseString parses from a string.
func ParseString(content string) (*ParseResult, error) {
	return Parse(strings.NewReader(content))
}

// HasConflicts reports whether any conflict region was found.
func (r *ParseResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}
