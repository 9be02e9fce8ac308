package citation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field returns the trimmed value of the first well-formed `label = {value}`
// or `label = "value"` assignment in text. The label is matched
// case-insensitively and must start at a word boundary.
//
// Values end at the first closing delimiter of the same kind. Nested braces
// are therefore not supported: `title = {A {B} C}` yields "A {B". An
// unterminated value is treated as missing.
func Field(text, label string) string {
	if label == "" {
		return ""
	}
	s := fieldScanner{text: text, lower: foldCase(text), label: strings.ToLower(label)}
	for {
		start := s.nextLabel()
		if start < 0 {
			return ""
		}
		if v, ok := s.valueAfter(start + len(s.label)); ok {
			return strings.TrimSpace(v)
		}
	}
}

type fieldScanner struct {
	text  string
	lower string
	label string
	pos   int
}

// nextLabel returns the offset of the next label occurrence at a word
// boundary, or -1.
func (s *fieldScanner) nextLabel() int {
	for s.pos < len(s.lower) {
		i := strings.Index(s.lower[s.pos:], s.label)
		if i < 0 {
			s.pos = len(s.lower)
			return -1
		}
		at := s.pos + i
		s.pos = at + len(s.label)
		if at == 0 || !isWordRune(lastRune(s.text[:at])) {
			return at
		}
	}
	return -1
}

// valueAfter parses `\s*=\s*{...}` or `\s*=\s*"..."` starting at i.
func (s *fieldScanner) valueAfter(i int) (string, bool) {
	i = skipSpace(s.text, i)
	if i >= len(s.text) || s.text[i] != '=' {
		return "", false
	}
	i = skipSpace(s.text, i+1)
	if i >= len(s.text) {
		return "", false
	}

	var closing byte
	switch s.text[i] {
	case '{':
		closing = '}'
	case '"':
		closing = '"'
	default:
		return "", false
	}

	end := strings.IndexByte(s.text[i+1:], closing)
	if end < 0 {
		return "", false
	}
	return s.text[i+1 : i+1+end], true
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// foldCase lower-cases s for label search. ToLower can change byte lengths
// for some scripts; offsets must stay valid for the original text, so fall
// back to an ASCII-only fold in that case.
func foldCase(s string) string {
	if lower := strings.ToLower(s); len(lower) == len(s) {
		return lower
	}
	return asciiLower(s)
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
