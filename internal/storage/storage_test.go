package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropatools/dedup/internal/types"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cfg := &Config{Path: filepath.Join(t.TempDir(), "catalog.db")}
	catalog, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalog.Close() })
	return catalog
}

func sampleRecord(id, department string) *types.Record {
	return &types.Record{
		ID:         id,
		Department: department,
		Purpose:    &types.Purpose{Description: "gestión de nóminas de empleados"},
		ResponsibleParty: &types.ResponsibleParty{
			Name:  "Acme Ibérica S.L.",
			TaxID: "B12345678",
		},
		DataCategories: []string{"identificativos", "laborales"},
		LegalBasis:     &types.LegalBasis{Kind: "contrato"},
	}
}

func TestSaveAndListRoundTrip(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	original := sampleRecord("r-1", "rrhh")
	require.NoError(t, catalog.SaveRecord(ctx, "acme", original))

	records, err := catalog.ListRecords(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, original, records[0])
}

func TestSaveRecordValidation(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	assert.Error(t, catalog.SaveRecord(ctx, "", sampleRecord("r-1", "")))
	assert.Error(t, catalog.SaveRecord(ctx, "acme", nil))
	assert.Error(t, catalog.SaveRecord(ctx, "acme", &types.Record{}))
}

func TestSaveRecordUpsert(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.SaveRecord(ctx, "acme", sampleRecord("r-1", "rrhh")))

	updated := sampleRecord("r-1", "finanzas")
	updated.Purpose = &types.Purpose{Description: "facturación a clientes"}
	require.NoError(t, catalog.SaveRecord(ctx, "acme", updated))

	records, err := catalog.ListRecords(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "facturación a clientes", records[0].PurposeText())
	assert.Equal(t, "finanzas", records[0].Department)
}

func TestOrganizationsAreIsolated(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.SaveRecord(ctx, "acme", sampleRecord("r-1", "rrhh")))
	require.NoError(t, catalog.SaveRecord(ctx, "globex", sampleRecord("r-1", "rrhh")))

	records, err := catalog.ListRecords(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = catalog.ListRecords(ctx, "umbrella")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListDepartment(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.SaveRecord(ctx, "acme", sampleRecord("r-1", "rrhh")))
	require.NoError(t, catalog.SaveRecord(ctx, "acme", sampleRecord("r-2", "rrhh")))
	require.NoError(t, catalog.SaveRecord(ctx, "acme", sampleRecord("r-3", "finanzas")))

	records, err := catalog.ListDepartment(ctx, "acme", "rrhh")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r-1", records[0].ID)
	assert.Equal(t, "r-2", records[1].ID)
}

func TestDeleteRecord(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, catalog.SaveRecord(ctx, "acme", sampleRecord("r-1", "rrhh")))
	require.NoError(t, catalog.DeleteRecord(ctx, "acme", "r-1"))

	records, err := catalog.ListRecords(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, records)

	// Deleting a missing record is a no-op.
	require.NoError(t, catalog.DeleteRecord(ctx, "acme", "r-1"))
}

func TestOpenInMemory(t *testing.T) {
	catalog, err := Open(context.Background(), &Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = catalog.Close() }()

	require.NoError(t, catalog.SaveRecord(context.Background(), "acme", sampleRecord("r-1", "")))
	records, err := catalog.ListRecords(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
