package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/scholarsift/scholarsift/internal/dedup"
)

var validatePretty bool

var validateCmd = &cobra.Command{
	Use:   "validate <original.json> <deduplicated.json>",
	Short: "Audit a dedup output against its input",
	Long: `Check the dedup invariants for a pair of record lists: the output
must never contain more records than the input. Warnings flag valid but
noteworthy outcomes (empty output, no duplicates found).

Exits nonzero when an invariant is violated.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := readInput(args[0])
		if err != nil {
			return err
		}
		deduplicated, err := readInput(args[1])
		if err != nil {
			return err
		}

		report := dedup.ValidateJSON(original, deduplicated)
		printReport(report)
		if err := writeJSON(report, validatePretty); err != nil {
			return err
		}
		if !report.IsValid {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validatePretty, "pretty", false,
		"indent the JSON output")
	rootCmd.AddCommand(validateCmd)
}

func printReport(report dedup.ValidationReport) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if report.IsValid {
		fmt.Fprintf(os.Stderr, "%s %d -> %d records (reduction %.2f)\n",
			green("Valid:"),
			report.Statistics.OriginalCount,
			report.Statistics.DeduplicatedCount,
			report.Statistics.ReductionRate)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", red("Invalid dedup output"))
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "  %s %s\n", red("error:"), e)
		}
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "  %s %s\n", yellow("warning:"), w)
	}
}
