package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ropatools/dedup/internal/population"
	"github.com/ropatools/dedup/internal/types"
)

var populationCmd = &cobra.Command{
	Use:   "population",
	Short: "Audit a record group for duplicate risk and consolidation",
	Long: `Run batch analysis over one department or record group: common
purpose keywords, duplicate-risk pairs, and consolidation clusters.

Examples:
  # From a record file
  ropadedup population --file records.yaml

  # From a catalog, one department
  ropadedup population --catalog ropa.db --org acme --department marketing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		organization, _ := cmd.Flags().GetString("org")
		department, _ := cmd.Flags().GetString("department")

		ctx := context.Background()
		records, err := loadPopulation(ctx, filePath, organization, department)
		if err != nil {
			return err
		}

		engine, err := population.New(population.DefaultConfig())
		if err != nil {
			return err
		}

		report := engine.Analyze(records)
		if report.Degraded {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", report.DegradedReason)
		}

		if jsonOutput {
			return printJSON(report)
		}
		printReport(report)
		return nil
	},
}

func printReport(report types.PopulationReport) {
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\n%s Common purpose keywords:\n", cyan("▶"))
	if len(report.CommonKeywords) == 0 {
		fmt.Println("  none")
	}
	for _, kw := range report.CommonKeywords {
		fmt.Printf("  %-24s %d records\n", kw.Token, kw.Frequency)
	}

	fmt.Printf("\n%s Duplicate-risk pairs:\n", cyan("▶"))
	if len(report.RiskPairs) == 0 {
		fmt.Println("  none")
	}
	for _, pair := range report.RiskPairs {
		fmt.Printf("  %s %s <-> %s (%.2f)\n", yellow("!"), pair.IDA, pair.IDB, pair.Score)
	}

	fmt.Printf("\n%s Consolidation opportunities:\n", cyan("▶"))
	if len(report.ConsolidationOpportunities) == 0 {
		fmt.Println("  none")
	}
	for i, cluster := range report.ConsolidationOpportunities {
		fmt.Printf("  cluster %d: %s\n", i+1, strings.Join(cluster, ", "))
	}
}

func init() {
	populationCmd.Flags().String("file", "", "record file with the group to analyze (YAML or JSON)")
	populationCmd.Flags().String("org", "", "organization to read from the catalog")
	populationCmd.Flags().String("department", "", "department group to read from the catalog")
	rootCmd.AddCommand(populationCmd)
}
