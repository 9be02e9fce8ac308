package main

import (
	"fmt"

	"github.com/matsen/papernote/internal/pdf"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <id>...",
	Short: "Open papers' PDFs in the configured viewer",
	Long: `Open papers' PDFs in the configured viewer (see 'pn config pdf-reader').

Examples:
  pn open 2019-Devlin-BertPreTraining
  pn open 2019-Devlin-BertPreTraining 2023-Smith-DeepLearningForEveryone`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

// OpenResult is the response for the open command.
type OpenResult struct {
	Status string   `json:"status"`
	Opened []string `json:"opened"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	store := mustOpenStore(root)
	opener := pdf.NewOpener(root, cfg.PDFReader)

	// Resolve everything first so a bad id opens nothing
	var paths []string
	for _, id := range args {
		e, ok := store.Get(id)
		if !ok {
			exitWithError(ExitDataError, "paper not found: %s", id)
		}
		path, err := opener.ResolvePath(e.PDF)
		if err != nil {
			exitWithError(ExitDataError, "%s: %v", id, err)
		}
		paths = append(paths, path)
	}

	for _, path := range paths {
		if err := opener.Open(path); err != nil {
			exitWithError(ExitError, "opening PDF: %v", err)
		}
		logger.Debug("opened PDF", "path", path)
	}

	if humanOutput {
		for _, path := range paths {
			fmt.Printf("Opened %s\n", path)
		}
	} else {
		outputJSON(OpenResult{Status: "opened", Opened: paths})
	}
	return nil
}
