package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ropatools/dedup/internal/storage"
	"github.com/ropatools/dedup/internal/types"
)

// loadRecordFile reads a YAML or JSON file containing either a single
// record or a list of records. Format is chosen by extension, defaulting
// to YAML.
func loadRecordFile(path string) ([]*types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	isJSON := strings.EqualFold(filepath.Ext(path), ".json")

	var records []*types.Record
	if err := unmarshalRecords(data, isJSON, &records); err == nil && len(records) > 0 {
		return records, nil
	}

	var single types.Record
	if err := unmarshalRecord(data, isJSON, &single); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return []*types.Record{&single}, nil
}

func unmarshalRecords(data []byte, isJSON bool, out *[]*types.Record) error {
	if isJSON {
		return json.Unmarshal(data, out)
	}
	return yaml.Unmarshal(data, out)
}

func unmarshalRecord(data []byte, isJSON bool, out *types.Record) error {
	if isJSON {
		return json.Unmarshal(data, out)
	}
	return yaml.Unmarshal(data, out)
}

// loadPopulation resolves the comparison population: a record file when
// --against is given, otherwise the catalog (optionally filtered by
// department).
func loadPopulation(ctx context.Context, againstPath, organization, department string) ([]*types.Record, error) {
	if againstPath != "" {
		return loadRecordFile(againstPath)
	}
	if catalogPath == "" {
		return nil, fmt.Errorf("either --against or --catalog is required")
	}
	if organization == "" {
		return nil, fmt.Errorf("--org is required when reading from a catalog")
	}

	catalog, err := storage.Open(ctx, &storage.Config{Path: catalogPath})
	if err != nil {
		return nil, err
	}
	defer func() { _ = catalog.Close() }()

	if department != "" {
		return catalog.ListDepartment(ctx, organization, department)
	}
	return catalog.ListRecords(ctx, organization)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
