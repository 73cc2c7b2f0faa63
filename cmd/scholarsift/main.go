// Command scholarsift deduplicates scholarship record lists: it
// collapses duplicate listings scraped from multiple sources into
// canonical records, validates dedup output, and optionally persists
// the canonical list to a catalog database.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scholarsift/scholarsift/internal/dedup"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	engineCfg  dedup.Config
)

var rootCmd = &cobra.Command{
	Use:   "scholarsift",
	Short: "Scholarship record deduplication engine",
	Long: `scholarsift collapses duplicate scholarship listings into canonical records.

Records are compared with a weighted field similarity (title, organization,
amount, deadline) and merged preferring authoritative and more complete
values. A model-assisted strategy is available when ANTHROPIC_API_KEY is
set; the hybrid default falls back to the deterministic rules on any
model failure.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			engineCfg, err = dedup.LoadConfigFile(configPath)
		} else {
			engineCfg, err = dedup.ConfigFromEnv()
		}
		return err
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a YAML config file (default: environment variables)")
}

// readInput reads a JSON payload from a file path, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
