package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/papernote/internal/config"
	"github.com/matsen/papernote/internal/conflict"
	"github.com/matsen/papernote/internal/index"
	"github.com/matsen/papernote/internal/ingest"
	"github.com/matsen/papernote/internal/paper"
	"github.com/spf13/cobra"
)

// Interactive prompt choices
const (
	choiceOurs   = "1"
	choiceTheirs = "2"
)

var (
	resolveDryRun      bool
	resolveInteractive bool
)

func init() {
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "Show proposed resolution without modifying files")
	resolveCmd.Flags().BoolVar(&resolveInteractive, "interactive", false, "Prompt for conflicts that cannot be auto-resolved")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve git merge conflicts in the indexes",
	Long: `Resolve git merge conflicts in index/papers.jsonl, then rewrite both
indexes from the result. The CSV index is regenerated, so conflicts in
papers.csv need no attention.

Papers on both sides are matched by DOI, then by ID. A side whose record
is more complete wins; records that complement each other are merged.
Fields set to different values on both sides need --interactive.

Examples:
  pn resolve
  pn resolve --dry-run --human
  pn resolve --interactive`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

// ResolveResult is the response for the resolve command.
type ResolveResult struct {
	Status       string           `json:"status"`
	TotalPapers  int              `json:"total_papers"`
	Merged       int              `json:"merged"`
	OursPapers   int              `json:"ours_papers"`
	TheirsPapers int              `json:"theirs_papers"`
	Operations   []ResolveOp      `json:"operations"`
	Unresolved   []UnresolvedInfo `json:"unresolved,omitempty"`
}

// ResolveOp is one resolution decision.
type ResolveOp struct {
	ID     string `json:"id"`
	DOI    string `json:"doi,omitempty"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// UnresolvedInfo names a paper whose conflicts need a human.
type UnresolvedInfo struct {
	ID     string   `json:"id"`
	DOI    string   `json:"doi,omitempty"`
	Fields []string `json:"fields"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	path := jsonlPath(root)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			exitWithError(ExitDataError, "%s not found", path)
		}
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	parsed, err := conflict.ParseString(string(content))
	if err != nil {
		var parseErr conflict.ParseError
		if errors.As(err, &parseErr) {
			exitWithError(ExitDataError, "parsing %s: %v", path, parseErr)
		}
		exitWithError(ExitError, "parsing %s: %v", path, err)
	}

	if !parsed.HasConflicts() {
		if humanOutput {
			fmt.Println("No conflicts detected in papers.jsonl.")
		} else {
			outputJSON(ResolveResult{Status: "clean", TotalPapers: len(parsed.Clean), Operations: []ResolveOp{}})
		}
		return nil
	}

	var prompter ingest.Prompter
	if resolveInteractive && !resolveDryRun {
		prompter = ingest.NewLinePrompter(os.Stdin, os.Stderr)
	}

	result, entries, err := resolveConflicts(parsed, prompter)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if resolveDryRun {
		result.Status = "dry_run"
		printResolveResult(result)
		return nil
	}

	if len(result.Unresolved) > 0 {
		result.Status = "unresolved"
		printResolveResult(result)
		if humanOutput {
			fmt.Fprintln(os.Stderr, "\nerror: unresolvable conflicts require --interactive")
		}
		os.Exit(ExitDataError)
	}

	if err := writeResolved(config.IndexPath(root), entries); err != nil {
		exitWithError(exitCodeFor(err), "writing resolved indexes: %v", err)
	}

	result.Status = "resolved"
	printResolveResult(result)
	if humanOutput {
		fmt.Printf("\nRewrote %s and %s\n", index.CSVFile, index.JSONLFile)
	}
	return nil
}

// resolveConflicts applies a resolution to every region and returns all
// entries of the resolved file. True conflicts go to the prompter; with a
// nil prompter they are reported as unresolved.
func resolveConflicts(parsed *conflict.ParseResult, prompter ingest.Prompter) (ResolveResult, []paper.Entry, error) {
	result := ResolveResult{Operations: []ResolveOp{}}
	entries := append([]paper.Entry(nil), parsed.Clean...)

	for _, region := range parsed.Conflicts {
		matches := conflict.MatchPapers(region)

		for _, match := range matches.Matches {
			plan := conflict.Resolve(match)
			result.Operations = append(result.Operations, ResolveOp{
				ID: plan.ID, DOI: plan.DOI, Action: string(plan.Action), Reason: plan.Reason,
			})

			resolved := conflict.Apply(match, plan)
			switch {
			case plan.Action == conflict.ActionConflict && prompter == nil:
				fields := make([]string, len(plan.Conflicts))
				for i, c := range plan.Conflicts {
					fields[i] = c.Field
				}
				result.Unresolved = append(result.Unresolved, UnresolvedInfo{ID: plan.ID, DOI: plan.DOI, Fields: fields})
				continue
			case plan.Action == conflict.ActionConflict:
				if err := promptForConflict(prompter, &resolved, match, plan); err != nil {
					return result, nil, err
				}
				result.Merged++
			case plan.Action == conflict.ActionMerge:
				result.Merged++
			}
			entries = append(entries, resolved)
		}

		for _, e := range matches.OursOnly {
			entries = append(entries, e)
			result.OursPapers++
			result.Operations = append(result.Operations, ResolveOp{
				ID: e.ID, DOI: e.DOI, Action: string(conflict.ActionAddOurs), Reason: "paper only in ours",
			})
		}
		for _, e := range matches.TheirsOnly {
			entries = append(entries, e)
			result.TheirsPapers++
			result.Operations = append(result.Operations, ResolveOp{
				ID: e.ID, DOI: e.DOI, Action: string(conflict.ActionAddTheirs), Reason: "paper only in theirs",
			})
		}
	}

	result.TotalPapers = len(entries)
	return result, entries, nil
}

// promptForConflict asks which side wins each conflicting field.
func promptForConflict(p ingest.Prompter, resolved *paper.Entry, match conflict.Match, plan conflict.Plan) error {
	for i, fc := range plan.Conflicts {
		p.Say("\nConflict %d of %d for %s, field %q:", i+1, len(plan.Conflicts), plan.ID, fc.Field)
		p.Say("  [%s] ours:   %q", choiceOurs, truncateString(fc.Ours, 60))
		p.Say("  [%s] theirs: %q", choiceTheirs, truncateString(fc.Theirs, 60))

		for {
			answer, err := p.Ask("Choice", choiceOurs)
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("input closed while resolving %s", plan.ID)
			}
			if err != nil {
				return err
			}

			switch strings.TrimSpace(answer) {
			case choiceOurs:
				conflict.Choose(resolved, fc.Field, match.Ours)
			case choiceTheirs:
				conflict.Choose(resolved, fc.Field, match.Theirs)
			default:
				p.Say("Please enter %s or %s.", choiceOurs, choiceTheirs)
				continue
			}
			break
		}
	}
	return nil
}

// writeResolved rewrites both indexes from scratch.
func writeResolved(dir string, entries []paper.Entry) error {
	store := index.New(dir, index.WithLogger(logger))
	for _, e := range entries {
		if err := store.Upsert(e); err != nil {
			return err
		}
	}
	return store.Save()
}

func printResolveResult(result ResolveResult) {
	if !humanOutput {
		outputJSON(result)
		return
	}

	if result.Status == "dry_run" {
		fmt.Println("Dry run - no changes made")
		fmt.Println()
	}
	fmt.Println("Resolution summary:")
	fmt.Printf("  Total papers: %d\n", result.TotalPapers)
	if result.Merged > 0 {
		fmt.Printf("  Merged: %d\n", result.Merged)
	}
	if result.OursPapers > 0 {
		fmt.Printf("  Added from ours: %d\n", result.OursPapers)
	}
	if result.TheirsPapers > 0 {
		fmt.Printf("  Added from theirs: %d\n", result.TheirsPapers)
	}

	if len(result.Operations) > 0 {
		fmt.Println("\nOperations:")
		for _, op := range result.Operations {
			fmt.Printf("  %s: %s (%s)\n", op.ID, op.Action, op.Reason)
		}
	}

	if len(result.Unresolved) > 0 {
		fmt.Printf("\nUnresolved conflicts (%d):\n", len(result.Unresolved))
		for _, u := range result.Unresolved {
			fmt.Printf("  %s: conflicts on %s\n", u.ID, strings.Join(u.Fields, ", "))
		}
	}
}
