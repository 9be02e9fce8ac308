package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/matsen/papernote/internal/export"
	"github.com/matsen/papernote/internal/paper"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportAppend bool
	exportIDs    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "bibtex", "Output format: bibtex or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout (required for xlsx)")
	exportCmd.Flags().BoolVar(&exportAppend, "append", false, "Append to the BibTeX file, skipping entries it already has")
	exportCmd.Flags().StringVar(&exportIDs, "ids", "", "Export only these identifiers (comma-separated)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export papers to BibTeX or a spreadsheet",
	Long: `Export papers to BibTeX or an Excel workbook.

With --append the BibTeX is appended to the -o file; entries whose DOI or
citation key is already there are skipped.

Examples:
  pn export > refs.bib
  pn export -o refs.bib --append
  pn export --format xlsx -o papers.xlsx
  pn export --ids 2019-Devlin-BertPreTraining`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// ExportResult is the response for file exports.
type ExportResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportAppend && (exportFormat != "bibtex" || exportOutput == "") {
		exitWithError(ExitError, "--append needs --format bibtex and -o <file>")
	}

	root := mustFindLibrary()
	store := mustOpenStore(root)

	entries, err := selectEntries(store.Entries(), exportIDs)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	result := ExportResult{Status: "exported", Path: exportOutput, Added: len(entries)}

	switch exportFormat {
	case "bibtex":
		switch {
		case exportAppend:
			added, skipped, err := export.AppendNew(exportOutput, entries)
			if err != nil {
				exitWithError(ExitError, "%v", err)
			}
			result.Added, result.Skipped = added, skipped
		case exportOutput == "":
			// BibTeX on stdout is always text, never JSON
			fmt.Print(export.ToBibTeXList(entries))
			return nil
		default:
			if err := os.WriteFile(exportOutput, []byte(export.ToBibTeXList(entries)), 0644); err != nil {
				exitWithError(ExitError, "writing %s: %v", exportOutput, err)
			}
		}

	case "xlsx":
		if exportOutput == "" {
			exitWithError(ExitError, "--format xlsx needs -o <file>")
		}
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		if err := export.WriteXLSX(f, entries); err != nil {
			f.Close()
			exitWithError(ExitError, "%v", err)
		}
		if err := f.Close(); err != nil {
			exitWithError(ExitError, "closing %s: %v", exportOutput, err)
		}

	default:
		exitWithError(ExitError, "unknown format %q (valid: bibtex, xlsx)", exportFormat)
	}

	if humanOutput {
		fmt.Printf("Exported %d papers to %s", result.Added, result.Path)
		if result.Skipped > 0 {
			fmt.Printf(" (%d already present)", result.Skipped)
		}
		fmt.Println()
	} else {
		outputJSON(result)
	}
	return nil
}

// selectEntries keeps the entries named in a comma-separated id list, in
// list order. An empty list keeps everything.
func selectEntries(all []paper.Entry, ids string) ([]paper.Entry, error) {
	if strings.TrimSpace(ids) == "" {
		return all, nil
	}

	byID := make(map[string]paper.Entry, len(all))
	for _, e := range all {
		byID[e.ID] = e
	}

	var out []paper.Entry
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown id: %s", id)
		}
		out = append(out, e)
	}
	return out, nil
}
