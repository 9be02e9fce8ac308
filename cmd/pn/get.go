package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one paper",
	Long: `Show one paper as stored in index/papers.jsonl.

Example:
  pn get 2019-Devlin-BertPreTraining --human`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	store := mustOpenStore(root)

	e, ok := store.Get(args[0])
	if !ok {
		exitWithError(ExitDataError, "paper not found: %s", args[0])
	}

	if humanOutput {
		printEntryDetail(e)
	} else {
		outputJSON(e)
	}
	return nil
}
