package main

import (
	"fmt"
	"strings"

	"github.com/matsen/papernote/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set library configuration values",
	Long: `Get or set library configuration values.

Usage:
  pn config                        # Show all config
  pn config pdf-reader             # Get specific value
  pn config pdf-reader zathura     # Set value

Keys:
  pdf-reader     Viewer for 'pn open' (system, skim, preview, zathura, evince, okular, or a command)
  default-score  Score offered by 'pn new' (0-5)
  raw-glob       Pattern selecting PDFs in raw_pdf/ (e.g. *.pdf, **/*.pdf)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	if len(args) == 0 {
		values := make(map[string]string, len(config.Keys))
		for _, key := range config.Keys {
			values[key], _ = cfg.Get(key)
		}
		if humanOutput {
			for _, key := range config.Keys {
				fmt.Printf("%-14s %s\n", key+":", values[key])
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := normalizeKey(args[0])
	if !config.IsKey(key) {
		exitWithError(ExitError, "unknown configuration key: %s (valid: %s)", args[0], strings.Join(config.Keys, ", "))
	}

	if len(args) == 1 {
		value, _ := cfg.Get(key)
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	if err := cfg.Set(key, args[1]); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	value, _ := cfg.Get(key)
	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// normalizeKey accepts pdf_reader and PDF-Reader as pdf-reader.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "_", "-")
}
