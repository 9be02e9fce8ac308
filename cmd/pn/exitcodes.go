package main

import (
	"errors"

	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/doiorg"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/ingest"
	"github.com/matsen/papernote/internal/note"
	"github.com/matsen/papernote/internal/paper"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no library, unreadable config)
	ExitDataError   = 3 // Data error (malformed input, validation failure)
)

// exitCodeFor classifies an error returned by the library packages.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrNotLibrary):
		return ExitConfigError
	case errors.Is(err, ingest.ErrEmptyCitation),
		errors.Is(err, ingest.ErrNoPDF),
		errors.Is(err, paper.ErrInvalidScore),
		errors.Is(err, note.ErrNoteExists),
		errors.Is(err, index.ErrNoIDColumn),
		errors.Is(err, index.ErrSkippedRecords),
		errors.Is(err, doiorg.ErrNotFound),
		errors.Is(err, doiorg.ErrInvalidDOI):
		return ExitDataError
	}
	return ExitError
}
