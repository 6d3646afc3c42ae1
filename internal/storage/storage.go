// Package storage provides the sqlite-backed record catalog used by the
// CLI. It is a collaborator of the engine, never part of it: the analyzer
// packages operate purely on records supplied by the caller and know
// nothing about persistence.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/ropatools/dedup/internal/types"
)

// Config holds catalog configuration
type Config struct {
	// Path is the SQLite database file path.
	// Special value ":memory:" creates an in-memory database (useful for tests).
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: ".ropa/catalog.db",
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id            TEXT NOT NULL,
	organization  TEXT NOT NULL,
	department    TEXT NOT NULL DEFAULT '',
	payload       TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	PRIMARY KEY (organization, id)
);
CREATE INDEX IF NOT EXISTS idx_records_department ON records(organization, department);
`

// Catalog stores processing-activity records per organization.
type Catalog struct {
	db *sql.DB
}

// Open creates or opens a catalog at the configured path.
func Open(ctx context.Context, cfg *Config) (*Catalog, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	path := cfg.Path
	if path == "" {
		path = DefaultConfig().Path
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping catalog: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// SaveRecord inserts or replaces a record for the given organization. The
// record must carry an ID; the catalog never invents identifiers.
func (c *Catalog) SaveRecord(ctx context.Context, organization string, record *types.Record) error {
	if organization == "" {
		return fmt.Errorf("organization is required")
	}
	if record == nil || record.ID == "" {
		return fmt.Errorf("record with id is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", record.ID, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO records (id, organization, department, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (organization, id) DO UPDATE SET
			department = excluded.department,
			payload    = excluded.payload,
			updated_at = excluded.updated_at`,
		record.ID, organization, record.Department, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", record.ID, err)
	}
	return nil
}

// ListRecords returns every record stored for the organization, ordered by
// creation time (stable by id on equal timestamps).
func (c *Catalog) ListRecords(ctx context.Context, organization string) ([]*types.Record, error) {
	return c.list(ctx,
		`SELECT payload FROM records WHERE organization = ? ORDER BY created_at, id`,
		organization)
}

// ListDepartment returns the organization's records for one department
// group.
func (c *Catalog) ListDepartment(ctx context.Context, organization, department string) ([]*types.Record, error) {
	return c.list(ctx,
		`SELECT payload FROM records WHERE organization = ? AND department = ? ORDER BY created_at, id`,
		organization, department)
}

// DeleteRecord removes a record. Deleting a missing record is not an error.
func (c *Catalog) DeleteRecord(ctx context.Context, organization, id string) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM records WHERE organization = ? AND id = ?`, organization, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) list(ctx context.Context, query string, args ...any) ([]*types.Record, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*types.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var record types.Record
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}
