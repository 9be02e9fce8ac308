package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/index"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new library",
	Long: `Initialize a new library in dir (default: the current directory).

Creates:
  .papernote/
  ├── config.json     # Default config
  ├── .gitignore      # Ignores the cache
  └── cache/          # Query cache
  raw_pdf/            # Drop PDFs here
  notes/              # One note per paper
  index/
  ├── papers.csv
  └── papers.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}

	if config.IsLibrary(root) {
		exitWithError(ExitError, "directory already contains a papernote library")
	}

	if err := initLibrary(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized papernote library in %s\n", root)
		fmt.Printf("Drop PDFs into %s and run 'pn new'.\n", config.RawPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}

// initLibrary creates the library layout under root.
func initLibrary(root string) error {
	for _, dir := range []string{
		config.CachePath(root),
		config.RawPath(root),
		config.NotesPath(root),
		config.IndexPath(root),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	ignore := filepath.Join(config.LibraryPath(root), ".gitignore")
	if err := os.WriteFile(ignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := config.Default().Save(root); err != nil {
		return err
	}

	// Write empty indexes so both files exist from the start
	store, err := index.Open(config.IndexPath(root), index.WithLogger(logger))
	if err != nil {
		return err
	}
	return store.Save()
}
