package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/note"
	"github.com/matsen/papernote/internal/pdf"
	"github.com/spf13/cobra"
)

var (
	checkNoHash bool
	checkFixCSV bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkNoHash, "no-hash", false, "Skip PDF checksum verification")
	checkCmd.Flags().BoolVar(&checkFixCSV, "fix-csv", false, "Regenerate papers.csv from papers.jsonl before checking")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify library integrity",
	Long: `Verify library integrity.

Reports identifiers present in only one index, fields on which the two
indexes disagree, records the loaders skipped, missing or changed PDFs,
missing notes, notes without an index entry and duplicate DOIs.

With --fix-csv, papers.csv is first rewritten from papers.jsonl. This
repairs malformed CSV rows and CSV-side drift; papers.jsonl must load
cleanly.

Exits with code 3 when any issue is found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status string       `json:"status"`
	Papers int          `json:"papers"`
	Issues []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type   string   `json:"type"`
	ID     string   `json:"id,omitempty"`
	IDs    []string `json:"ids,omitempty"`
	Fields []string `json:"fields,omitempty"`
	Path   string   `json:"path,omitempty"`
	DOI    string   `json:"doi,omitempty"`
	Count  int      `json:"count,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	store := mustOpenStore(root)

	if checkFixCSV {
		if err := fixCSV(store); err != nil {
			exitWithError(exitCodeFor(err), "%v", err)
		}
		logger.Info("regenerated csv index", "path", store.CSV().Path())
	}

	issues, err := collectIssues(root, store, !checkNoHash)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	status := "ok"
	if len(issues) > 0 {
		status = "issues_found"
	}

	if humanOutput {
		fmt.Printf("Checked %d papers\n", len(store.IDs()))
		if len(issues) == 0 {
			fmt.Println("No issues found.")
		}
		for _, issue := range issues {
			fmt.Printf("  %s\n", describeIssue(issue))
		}
	} else {
		outputJSON(CheckResult{Status: status, Papers: len(store.IDs()), Issues: issues})
	}

	if len(issues) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// collectIssues runs every integrity check against the loaded store.
func collectIssues(root string, store *index.Store, hashPDFs bool) ([]CheckIssue, error) {
	issues := []CheckIssue{}

	if n := store.CSV().Skipped(); n > 0 {
		issues = append(issues, CheckIssue{Type: "skipped_records", Path: store.CSV().Path(), Count: n})
	}
	if n := store.JSONL().Skipped(); n > 0 {
		issues = append(issues, CheckIssue{Type: "skipped_records", Path: store.JSONL().Path(), Count: n})
	}

	for _, d := range store.Verify() {
		issues = append(issues, CheckIssue{Type: d.Kind, ID: d.ID, Fields: d.Fields})
	}

	dois := make(map[string][]string)
	indexed := make(map[string]bool)
	for _, id := range store.IDs() {
		indexed[id] = true

		pdfRel, sha, notePath := "", "", note.Path(id)
		if e, ok := store.JSONL().Get(id); ok {
			pdfRel, sha = e.PDF, e.PDFSHA256
			if e.NotePath != "" {
				notePath = e.NotePath
			}
			if e.DOI != "" {
				key := strings.ToLower(e.DOI)
				dois[key] = append(dois[key], id)
			}
		} else if row, ok := store.CSV().Get(id); ok {
			pdfRel = row.PDF
		}

		if pdfRel != "" {
			full := resolveLibraryPath(root, pdfRel)
			switch _, err := os.Stat(full); {
			case os.IsNotExist(err):
				issues = append(issues, CheckIssue{Type: "missing_pdf", ID: id, Path: pdfRel})
			case err != nil:
				return nil, fmt.Errorf("checking %s: %w", full, err)
			case hashPDFs && sha != "":
				got, err := pdf.Checksum(full)
				if err != nil {
					return nil, err
				}
				if got != sha {
					issues = append(issues, CheckIssue{Type: "checksum_mismatch", ID: id, Path: pdfRel})
				}
			}
		}

		if _, err := os.Stat(resolveLibraryPath(root, notePath)); os.IsNotExist(err) {
			issues = append(issues, CheckIssue{Type: "missing_note", ID: id, Path: notePath})
		}
	}

	noteIDs, err := note.ExistingIDs(config.NotesPath(root))
	if err != nil {
		return nil, err
	}
	for _, id := range noteIDs {
		if !indexed[id] {
			issues = append(issues, CheckIssue{Type: "orphan_note", ID: id, Path: note.Path(id)})
		}
	}

	for _, doi := range slices.Sorted(maps.Keys(dois)) {
		if ids := dois[doi]; len(ids) > 1 {
			issues = append(issues, CheckIssue{Type: "duplicate_doi", IDs: ids, DOI: doi})
		}
	}

	return issues, nil
}

// fixCSV rewrites the CSV index from the JSONL index.
func fixCSV(store *index.Store) error {
	if n := store.JSONL().Skipped(); n > 0 {
		return fmt.Errorf("%s has %d malformed lines; fix them first: %w", store.JSONL().Path(), n, index.ErrSkippedRecords)
	}
	store.RegenerateCSV()
	return store.Save()
}

// resolveLibraryPath turns a stored forward-slash path into a file path.
func resolveLibraryPath(root, stored string) string {
	p := filepath.FromSlash(stored)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func describeIssue(issue CheckIssue) string {
	switch issue.Type {
	case "skipped_records":
		return fmt.Sprintf("%s: %d malformed records skipped", issue.Path, issue.Count)
	case index.DriftMismatch:
		return fmt.Sprintf("%s: indexes disagree on %s", issue.ID, strings.Join(issue.Fields, ", "))
	case "duplicate_doi":
		return fmt.Sprintf("DOI %s shared by %s", issue.DOI, strings.Join(issue.IDs, ", "))
	}
	if issue.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", issue.ID, strings.ReplaceAll(issue.Type, "_", " "), issue.Path)
	}
	return fmt.Sprintf("%s: %s", issue.ID, strings.ReplaceAll(issue.Type, "_", " "))
}
