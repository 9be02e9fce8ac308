// Package index maintains the two flat-file indexes of a library: a CSV
// table for spreadsheets and a JSONL file with one full record per line.
//
// Both indexes are loaded into memory, modified with wholesale upserts and
// rewritten in full, sorted by identifier. No locking is done; a library is
// assumed to have a single writer.
package index

import (
	"log/slog"
	"maps"
	"slices"
)

// Default file names inside the index directory.
const (
	CSVFile   = "papers.csv"
	JSONLFile = "papers.jsonl"
)

// Option configures an index.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
