package main

import (
	"fmt"
	"os"

	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from index/papers.jsonl",
	Long: `Rebuild the SQLite query cache from index/papers.jsonl.

list and search rebuild a stale cache on their own; use this after
restoring a library or if the cache becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Papers int    `json:"papers"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	n, err := db.RebuildFromJSONL(jsonlPath(root), index.WithLogger(logger))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding query cache: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query cache with %d papers\n", n)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Papers: n})
	}
	return nil
}
