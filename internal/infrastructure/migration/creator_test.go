package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create invoices table", "create_invoices_table"},
		{"Create-Invoices-Table", "create_invoices_table"},
		{"CREATE_INVOICES", "create_invoices"},
		{"add__vat__rate", "add_vat_rate"},
		{"Add Sequences 2025", "add_sequences_2025"},
		{"   spaces   ", "spaces"},
		{"diakritika!@#$pryc", "diakritikapryc"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add payment terms", "Add payment terms to invoices")
	require.NoError(t, err)

	// version is the 14-digit timestamp the files sort by
	assert.Len(t, mf.Version, 14)

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)
	assert.Equal(t, mf.Version+"_add_payment_terms", upBase)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add payment terms")
	assert.Contains(t, string(up), "Add payment terms to invoices")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	mf, err := CreateMigration(nested, "init", "initial schema")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	for _, f := range []string{
		"20250901120000_create_clients.up.sql",
		"20250901120000_create_clients.down.sql",
		"20250901120100_create_invoices.up.sql",
		"20250901120100_create_invoices.down.sql",
		"20250901120200_create_sequences.up.sql",
		"20250901120200_create_sequences.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- sql"), 0644))
	}

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20250901120000_create_clients",
		"20250901120100_create_invoices",
		"20250901120200_create_sequences",
	}, migrations)
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	migrations, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()

	for _, f := range []string{
		"20250901120000_create_clients.up.sql",
		"20250901120000_create_clients.down.sql",
		"README.md",
		".gitkeep",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250901120000_create_clients"}, migrations)
}
