// Package pdf finds, fingerprints, sniffs and opens the PDF files a
// library refers to.
package pdf

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultGlob selects the PDFs in the inbox.
const DefaultGlob = "*.pdf"

// FindPDFs returns the files in dir matching pattern, sorted by name.
// Matching is case-insensitive on the extension so "Paper.PDF" is found by
// "*.pdf". Directories are never returned.
func FindPDFs(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultGlob
	}
	if err := ValidateGlob(pattern); err != nil {
		return nil, err
	}

	fsys := os.DirFS(dir)
	var found []string
	err := doublestar.GlobWalk(fsys, foldExt(pattern), func(path string, d os.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		found = append(found, filepath.Join(dir, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	slices.Sort(found)
	return found, nil
}

// ValidateGlob rejects malformed inbox patterns.
func ValidateGlob(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return nil
}

// foldExt rewrites a trailing ".pdf" into a case-insensitive class.
func foldExt(pattern string) string {
	n := len(pattern) - len(".pdf")
	if n < 0 || !strings.EqualFold(pattern[n:], ".pdf") {
		return pattern
	}
	return pattern[:n] + ".[pP][dD][fF]"
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing PDF: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RelPath returns path relative to root with forward slashes, the form
// stored in the indexes. Paths outside root are returned absolute.
func RelPath(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}

	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs), nil
	}
	return filepath.ToSlash(rel), nil
}
