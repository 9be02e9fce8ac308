package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", DefaultListLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over the library",
	Long: `Search titles, authors, tags, keywords and summaries.

Examples:
  pn search transformer
  pn search "masked language model" --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	root := mustFindLibrary()
	db := mustOpenDatabase(root)
	defer db.Close()

	entries, err := db.Search(query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Printf("No papers match %q.\n", query)
			return nil
		}
		for _, e := range entries {
			printEntryLine(e, SearchTitleMaxLen)
		}
		return nil
	}

	outputJSON(papersResponse(entries))
	return nil
}
