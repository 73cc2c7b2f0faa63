package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/scholarsift/scholarsift/internal/types"
)

var (
	batchMethod string
	batchPretty bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <batches.json|->",
	Short: "Deduplicate a batch of independent record lists",
	Long: `Read a JSON array whose elements are each a scholarship record list,
deduplicate every element independently, and print the batch envelope.

Elements fail independently: a malformed element is reported in its
slot while the rest of the batch is processed normally.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		method, err := types.ParseMethod(batchMethod)
		if err != nil {
			return err
		}

		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		var elements []json.RawMessage
		if err := json.Unmarshal(data, &elements); err != nil {
			return fmt.Errorf("input is not a JSON array of record lists: %w", err)
		}

		orch, err := newOrchestrator(method)
		if err != nil {
			return err
		}

		batch, err := orch.DedupeBatch(ctx, elements, method)
		if err != nil {
			return err
		}

		printBatchSummary(batch)
		return writeJSON(batch, batchPretty)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchMethod, "method", "hybrid",
		"dedup strategy: rules, model, or hybrid")
	batchCmd.Flags().BoolVar(&batchPretty, "pretty", false,
		"indent the JSON output")
	rootCmd.AddCommand(batchCmd)
}

func printBatchSummary(batch *types.BatchResult) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(os.Stderr, "%s run %s: %d elements (%s, %s)\n",
		cyan("Batch:"), batch.RunID, len(batch.Results),
		green(fmt.Sprintf("%d ok", batch.Totals.SucceededElements)),
		red(fmt.Sprintf("%d failed", batch.Totals.FailedElements)))

	for i, r := range batch.Results {
		if r.Success {
			fmt.Fprintf(os.Stderr, "  [%d] %d -> %d records (method=%s)\n",
				i, r.OriginalCount, r.DeduplicatedCount, r.Method)
		} else {
			fmt.Fprintf(os.Stderr, "  [%d] %s %s\n", i, red("failed:"), r.Error)
		}
	}
	fmt.Fprintf(os.Stderr, "  totals: %d in, %d out, %d removed (rate %.2f, %dms)\n",
		batch.Totals.TotalOriginalItems,
		batch.Totals.TotalDeduplicatedItems,
		batch.Totals.TotalDuplicatesRemoved,
		batch.Totals.OverallDeduplicationRate,
		batch.Totals.TotalProcessingTimeMs)
}
