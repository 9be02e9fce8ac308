package main

import (
	"fmt"

	"github.com/matsen/papernote/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listTag   string
	listYear  string
	listLimit int
)

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only papers with this tag (case-insensitive)")
	listCmd.Flags().StringVar(&listYear, "year", "", "Only papers from this year ('unknown' for undated)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", DefaultListLimit, "Maximum number of papers (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers in the library",
	Long: `List papers ordered by identifier.

Examples:
  pn list
  pn list --tag nlp --year 2023
  pn list --limit 0 --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenDatabase(root)
	defer db.Close()

	entries, err := db.List(storage.ListFilter{Tag: listTag, Year: listYear, Limit: listLimit})
	if err != nil {
		exitWithError(ExitError, "listing papers: %v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No papers found.")
			return nil
		}
		for _, e := range entries {
			printEntryLine(e, ListTitleMaxLen)
		}
		return nil
	}

	outputJSON(papersResponse(entries))
	return nil
}
