package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user for input. Ask and AskLines return io.EOF once
// input is exhausted.
type Prompter interface {
	// Ask reads one line. A blank answer yields def.
	Ask(question, def string) (string, error)
	// AskLines reads lines until a blank line or end of input.
	AskLines(question string) (string, error)
	// Say shows an informational message.
	Say(format string, args ...any)
}

// LinePrompter implements Prompter over plain line-oriented streams.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter reads answers from in and writes questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask implements Prompter.
func (p *LinePrompter) Ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// AskLines implements Prompter.
func (p *LinePrompter) AskLines(question string) (string, error) {
	fmt.Fprintln(p.out, question)
	fmt.Fprintln(p.out, "(finish with an empty line)")

	var lines []string
	for {
		line, err := p.readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// Say implements Prompter.
func (p *LinePrompter) Say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
