// Package main provides the pn CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// verbose lowers the log level to debug
	verbose bool

	logger = slog.New(slog.DiscardHandler)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra's own errors (bad flags) land here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pn",
	Short: "Paper notes from pasted citations",
	Long: `pn keeps a small research library: PDFs, one Markdown note per paper,
and two flat indexes (index/papers.csv and index/papers.jsonl) kept in step.

Add a paper with 'pn new': pick a PDF from raw_pdf/, paste its BibTeX,
answer a few questions. All commands output JSON unless --human is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	// .env may provide PN_LIBRARY and DOI_MAILTO
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.Version = Version
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// mustFindLibrary locates the library to operate on, exits on error.
func mustFindLibrary() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.ResolveLibrary(cwd)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'pn init' to create a library, or set %s.", err, config.EnvLibrary)
	}
	logger.Debug("using library", "root", root)
	return root
}

// mustLoadConfig loads the library configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenStore loads both indexes, exits on error.
func mustOpenStore(root string) *index.Store {
	store, err := index.Open(config.IndexPath(root), index.WithLogger(logger))
	if err != nil {
		exitWithError(exitCodeFor(err), "loading indexes: %v", err)
	}
	return store
}

// mustOpenDatabase opens the query cache, rebuilding it first when
// papers.jsonl changed since the last build. The caller closes the DB.
func mustOpenDatabase(root string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	jsonlPath := jsonlPath(root)
	stale := cacheIsStale(config.DBPath(root), jsonlPath)

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	if stale {
		n, err := db.RebuildFromJSONL(jsonlPath, index.WithLogger(logger))
		if err != nil {
			db.Close()
			exitWithError(ExitDataError, "rebuilding query cache: %v", err)
		}
		logger.Debug("rebuilt stale query cache", "papers", n)
	}
	return db
}

func jsonlPath(root string) string {
	return filepath.Join(config.IndexPath(root), index.JSONLFile)
}

// cacheIsStale reports whether the cache at dbPath is missing or older
// than the JSONL index it was built from.
func cacheIsStale(dbPath, jsonlPath string) bool {
	db, err := os.Stat(dbPath)
	if err != nil {
		return true
	}
	src, err := os.Stat(jsonlPath)
	if err != nil {
		return false
	}
	return src.ModTime().After(db.ModTime())
}
