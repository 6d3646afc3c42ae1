package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ropatools/dedup/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import records from a file into the catalog",
	Long: `Load processing-activity records from a YAML or JSON file into the
sqlite catalog. Records without an id are assigned one on import; the
analysis engine itself never generates identifiers.

Example:
  ropadedup import --file records.yaml --catalog ropa.db --org acme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		organization, _ := cmd.Flags().GetString("org")

		if catalogPath == "" {
			return fmt.Errorf("--catalog is required")
		}

		records, err := loadRecordFile(filePath)
		if err != nil {
			return err
		}

		ctx := context.Background()
		catalog, err := storage.Open(ctx, &storage.Config{Path: catalogPath})
		if err != nil {
			return err
		}
		defer func() { _ = catalog.Close() }()

		imported := 0
		for _, record := range records {
			if record.ID == "" {
				record.ID = uuid.NewString()
			}
			if err := catalog.SaveRecord(ctx, organization, record); err != nil {
				return err
			}
			imported++
		}
		fmt.Printf("Imported %d records into %s\n", imported, catalogPath)
		return nil
	},
}

func init() {
	importCmd.Flags().String("file", "", "record file to import (YAML or JSON)")
	importCmd.Flags().String("org", "", "organization to store the records under")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("org")
	rootCmd.AddCommand(importCmd)
}
