package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener resolves library-relative PDF paths and launches a viewer.
type Opener struct {
	root   string
	reader string
}

// NewOpener returns an Opener for the library at root. reader names a
// known viewer ("skim", "preview", "zathura", "evince", "okular"), any
// other command on PATH, or "" / "system" for the platform default.
func NewOpener(root, reader string) *Opener {
	if reader == "" {
		reader = "system"
	}
	return &Opener{root: root, reader: reader}
}

// ResolvePath turns a stored pdf field into an existing file path.
func (o *Opener) ResolvePath(stored string) (string, error) {
	if stored == "" {
		return "", fmt.Errorf("entry has no PDF")
	}

	full := filepath.FromSlash(stored)
	if !filepath.IsAbs(full) {
		full = filepath.Join(o.root, full)
	}

	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", full)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}
	return full, nil
}

// Open starts the viewer on path without waiting for it to exit.
func (o *Opener) Open(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", cmd.Path, err)
	}
	return nil
}

// Command builds the viewer invocation for path on the current platform.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	switch o.reader {
	case "skim":
		return exec.Command("open", "-a", "Skim", path), nil
	case "preview":
		return exec.Command("open", "-a", "Preview", path), nil
	case "system":
		switch runtime.GOOS {
		case "darwin":
			return exec.Command("open", path), nil
		case "linux", "freebsd", "openbsd":
			return exec.Command("xdg-open", path), nil
		case "windows":
			return exec.Command("cmd", "/c", "start", "", path), nil
		default:
			return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
		}
	default:
		return exec.Command(o.reader, path), nil
	}
}
