package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/scholarsift/scholarsift/internal/ai"
	"github.com/scholarsift/scholarsift/internal/catalog"
	"github.com/scholarsift/scholarsift/internal/dedup"
	"github.com/scholarsift/scholarsift/internal/types"
)

var (
	dedupeMethod string
	dedupeDB     string
	dedupeSource string
	dedupePretty bool
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <records.json|->",
	Short: "Deduplicate a scholarship record list",
	Long: `Read a JSON array of scholarship records, collapse duplicates into
canonical records, and print the result envelope as JSON.

Use "-" to read from stdin. With --db, the canonical list is also
persisted to the catalog database under --source.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		method, err := types.ParseMethod(dedupeMethod)
		if err != nil {
			return err
		}

		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		records, err := dedup.ParseRecordList(data)
		if err != nil {
			return err
		}

		orch, err := newOrchestrator(method)
		if err != nil {
			return err
		}

		result, err := orch.Dedupe(ctx, records, method)
		if err != nil {
			return err
		}

		if dedupeDB != "" {
			store, err := catalog.Open(dedupeDB)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Replace(ctx, dedupeSource, result.Deduplicated); err != nil {
				return fmt.Errorf("persisting canonical list: %w", err)
			}
		}

		printSummary(result)
		return writeJSON(result, dedupePretty)
	},
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeMethod, "method", "hybrid",
		"dedup strategy: rules, model, or hybrid")
	dedupeCmd.Flags().StringVar(&dedupeDB, "db", "",
		"catalog database path to persist the canonical list")
	dedupeCmd.Flags().StringVar(&dedupeSource, "source", "default",
		"catalog source name used with --db")
	dedupeCmd.Flags().BoolVar(&dedupePretty, "pretty", false,
		"indent the JSON output")
	rootCmd.AddCommand(dedupeCmd)
}

// newOrchestrator builds the engine, wiring the model client only when
// the chosen method can use it. Rules mode never touches the network;
// hybrid runs rules-only when no API key is configured.
func newOrchestrator(method types.Method) (*dedup.Orchestrator, error) {
	var client dedup.CompletionClient
	if method != types.MethodRules {
		clientCfg := ai.DefaultConfig()
		clientCfg.RequestTimeout = engineCfg.RequestTimeout
		c, err := ai.NewClient(clientCfg)
		switch {
		case err == nil:
			client = c
		case method == types.MethodModel:
			return nil, err
		default:
			fmt.Fprintf(os.Stderr, "Warning: %v (hybrid will run rules only)\n", err)
		}
	}
	return dedup.NewOrchestrator(engineCfg, client)
}

func printSummary(result *types.DedupResult) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(os.Stderr, "%s %d records in, %d out, %s removed (method=%s, confidence=%.1f, %dms)\n",
		cyan("Dedup:"),
		result.OriginalCount,
		result.DeduplicatedCount,
		green(fmt.Sprintf("%d duplicates", result.DuplicatesRemoved)),
		yellow(string(result.Method)),
		result.Metadata.Confidence,
		result.Metadata.ProcessingTimeMs)
}

func writeJSON(v any, pretty bool) error {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
