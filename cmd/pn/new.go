package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matsen/papernote/internal/clipboard"
	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/doiorg"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	newPDF        string
	newGlob       string
	newBibTeXFile string
	newClipboard  bool
	newDOI        string
	newKeywords   string
	newSummary    string
	newComment    string
	newScore      float64
	newNoPrompt   bool
)

func init() {
	newCmd.Flags().StringVar(&newPDF, "pdf", "", "PDF to ingest (default: pick from raw_pdf/)")
	newCmd.Flags().StringVar(&newGlob, "glob", "", "Pattern selecting inbox PDFs (default from config, else *.pdf)")
	newCmd.Flags().StringVar(&newBibTeXFile, "bibtex-file", "", "Read the citation from a file ('-' for stdin)")
	newCmd.Flags().BoolVar(&newClipboard, "clipboard", false, "Read the citation from the system clipboard")
	newCmd.Flags().StringVar(&newDOI, "doi", "", "Fetch the citation for this DOI from doi.org")
	newCmd.Flags().StringVar(&newKeywords, "keywords", "", "Keywords, comma or semicolon separated (become tags)")
	newCmd.Flags().StringVar(&newSummary, "summary", "", "One-paragraph summary")
	newCmd.Flags().StringVar(&newComment, "comment", "", "Free comment")
	newCmd.Flags().Float64Var(&newScore, "score", 0, "Overall score 0-5 (default: ask, or the configured default)")
	newCmd.Flags().BoolVar(&newNoPrompt, "no-prompt", false, "Never ask; use flags and defaults only")
	newCmd.MarkFlagsMutuallyExclusive("bibtex-file", "clipboard", "doi")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Add a paper from a PDF and its citation",
	Long: `Add a paper to the library.

Binds one PDF to its BibTeX citation, assigns an identifier of the form
{year}-{FirstAuthorFamilyName}-{TitleSlug}, writes notes/<id>.md and
updates both index/papers.csv and index/papers.jsonl.

The PDF is the only file in raw_pdf/, one chosen from a numbered list,
or the --pdf flag. The citation is pasted at the prompt unless
--bibtex-file, --clipboard or --doi supplies it.

Examples:
  pn new
  pn new --pdf ~/Downloads/bert.pdf --clipboard
  pn new --doi 10.18653/v1/N19-1423 --keywords "nlp; pretraining" --score 4.5
  pbpaste | pn new --bibtex-file - --no-prompt`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

// NewResult is the response for the new command.
type NewResult struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Note   string `json:"note"`
	PDF    string `json:"pdf"`
}

func runNew(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	text, err := citationFromSource(cmd.Context(), cmd.InOrStdin())
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	req := ingest.Request{
		Root:         root,
		PDF:          newPDF,
		Glob:         newGlob,
		Citation:     text,
		Keywords:     newKeywords,
		Summary:      newSummary,
		Comment:      newComment,
		DefaultScore: cfg.DefaultScore,
	}
	if req.Glob == "" {
		req.Glob = cfg.RawGlob
	}
	if cmd.Flags().Changed("score") {
		req.Score = &newScore
	}

	opts := ingest.Options{
		Logger: logger,
		Index:  []index.Option{index.WithLogger(logger)},
	}
	if !newNoPrompt {
		// Questions go to stderr so stdout stays machine-readable
		opts.Prompter = ingest.NewLinePrompter(cmd.InOrStdin(), os.Stderr)
	}

	res, err := ingest.Run(req, opts)
	if errors.Is(err, index.ErrSkippedRecords) {
		exitWithError(ExitDataError, "%v\n\nRun 'pn check' to locate them; 'pn check --fix-csv' repairs the CSV index.", err)
	}
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		fmt.Printf("Added %s\n", res.Entry.ID)
		fmt.Printf("  note: %s\n", res.NoteFile)
		fmt.Printf("  pdf:  %s\n", res.Entry.PDF)
	} else {
		outputJSON(NewResult{
			Status: "added",
			ID:     res.Entry.ID,
			Note:   res.Entry.NotePath,
			PDF:    res.Entry.PDF,
		})
	}
	return nil
}

// citationFromSource returns the citation text named by the flags, or ""
// when it should be pasted at the prompt.
func citationFromSource(ctx context.Context, stdin io.Reader) (string, error) {
	switch {
	case newBibTeXFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading citation from stdin: %w", err)
		}
		return string(data), nil

	case newBibTeXFile != "":
		data, err := os.ReadFile(config.ExpandPath(newBibTeXFile))
		if err != nil {
			return "", fmt.Errorf("reading citation: %w", err)
		}
		return string(data), nil

	case newClipboard:
		text, err := clipboard.Paste()
		if err != nil {
			return "", err
		}
		return text, nil

	case newDOI != "":
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, doiorg.DefaultTimeout)
		defer cancel()

		client := doiorg.NewClient(doiorg.WithMailto(config.DOIMailto()))
		start := time.Now()
		text, err := client.FetchBibTeX(ctx, newDOI)
		if err != nil {
			return "", err
		}
		logger.Debug("fetched citation", "doi", newDOI, "elapsed", time.Since(start))
		return text, nil
	}
	return "", nil
}
