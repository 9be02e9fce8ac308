// Package clipboard reads the system clipboard via platform commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrClipboardUnavailable is returned when no clipboard command is found.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// pasteCommands lists candidate readers per platform, in preference order.
var pasteCommands = map[string][][]string{
	"darwin": {{"pbpaste"}},
	"linux": {
		{"wl-paste", "--no-newline"},
		{"xclip", "-selection", "clipboard", "-out"},
		{"xsel", "--clipboard", "--output"},
	},
}

// pasteCommand returns the argv of the first available reader.
func pasteCommand(goos string) ([]string, error) {
	for _, argv := range pasteCommands[goos] {
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether Paste can work on this system.
func IsAvailable() bool {
	_, err := pasteCommand(runtime.GOOS)
	return err == nil
}

// Paste returns the current clipboard text.
func Paste() (string, error) {
	argv, err := pasteCommand(runtime.GOOS)
	if err != nil {
		return "", err
	}

	out, err := exec.Command(argv[0], argv[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("reading clipboard with %s: %w", argv[0], err)
	}
	return string(out), nil
}
