package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ropatools/dedup/internal/analyzer"
	"github.com/ropatools/dedup/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a candidate record against the existing registry",
	Long: `Check a candidate processing-activity record for duplicates.

The candidate is scored against every existing record; candidates above the
similarity threshold are reported with per-field breakdowns, conflicts, and
a recommended action.

Examples:
  # Against a record file
  ropadedup check --file candidate.yaml --against existing.yaml

  # Against a catalog
  ropadedup check --file candidate.yaml --catalog ropa.db --org acme

  # Machine-readable output
  ropadedup check --file candidate.yaml --against existing.yaml --json

Exits non-zero when the decision is block, so scripts can gate creation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		againstPath, _ := cmd.Flags().GetString("against")
		organization, _ := cmd.Flags().GetString("org")

		candidates, err := loadRecordFile(filePath)
		if err != nil {
			return err
		}
		if len(candidates) != 1 {
			return fmt.Errorf("--file must contain exactly one candidate record (got %d)", len(candidates))
		}

		ctx := context.Background()
		existing, err := loadPopulation(ctx, againstPath, organization, "")
		if err != nil {
			return err
		}

		cfg, err := loadEngineConfig()
		if err != nil {
			return err
		}
		engine, err := analyzer.New(cfg)
		if err != nil {
			return err
		}

		analysis := engine.Analyze(candidates[0], existing)
		if analysis.Degraded {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", analysis.DegradedReason)
		}

		if jsonOutput {
			if err := printJSON(analysis); err != nil {
				return err
			}
		} else {
			printAnalysis(analysis)
		}

		if analysis.Decision.Action == types.ActionBlock {
			os.Exit(1)
		}
		return nil
	},
}

func printAnalysis(analysis types.DuplicationAnalysis) {
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	decorate := map[types.Action]func(a ...interface{}) string{
		types.ActionCreate: green,
		types.ActionInform: cyan,
		types.ActionWarn:   yellow,
		types.ActionBlock:  red,
	}[analysis.Decision.Action]

	fmt.Printf("\n%s %s\n", decorate(strings.ToUpper(string(analysis.Decision.Action))), analysis.Decision.Message)

	if !analysis.HasSimilar {
		return
	}
	fmt.Printf("\nSimilar records (%d):\n", len(analysis.SimilarRecords))
	for _, sr := range analysis.SimilarRecords {
		fmt.Printf("  %s score %.2f: %s\n", sr.Record.ID, sr.Result.Rounded(), sr.Recommendation)
		for _, conflict := range sr.Result.Conflicts {
			fmt.Printf("    %s conflict (%s): %s\n", red("!"), conflict.Severity, conflict.Message)
		}
		if sr.Result.Merge.Recommended {
			fmt.Printf("    merge opportunity (%s confidence)\n", sr.Result.Merge.Confidence)
		}
	}
}

func init() {
	checkCmd.Flags().String("file", "", "candidate record file (YAML or JSON)")
	checkCmd.Flags().String("against", "", "record file with the existing population")
	checkCmd.Flags().String("org", "", "organization to read from the catalog")
	_ = checkCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(checkCmd)
}
