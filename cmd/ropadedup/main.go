// ropadedup checks processing-activity records for duplicates before they
// enter an organization's registry, and audits whole record groups for
// consolidation opportunities.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ropatools/dedup/internal/similarity"
)

var (
	// Global flags shared by subcommands.
	catalogPath string
	configPath  string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "ropadedup",
	Short: "Duplicate detection for processing-activity registries",
	Long: `ropadedup scores candidate processing-activity records against an
organization's existing registry and recommends an action: create, inform,
warn, or block. It also audits whole departments for duplicate risk and
consolidation opportunities.

The engine is a pure local computation: no network access, no persistence
beyond the optional record catalog.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to the sqlite record catalog")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML calibration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
}

// loadEngineConfig resolves the similarity calibration: YAML file when
// --config is given, environment overrides otherwise.
func loadEngineConfig() (similarity.Config, error) {
	if configPath != "" {
		return similarity.LoadConfig(configPath)
	}
	return similarity.ConfigFromEnv()
}
