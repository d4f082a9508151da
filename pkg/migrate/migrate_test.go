package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDir_repoMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestRepoMigrations_inventory(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}

	expected := []string{
		"create_users",
		"create_catalog",
		"create_cart_items",
		"create_orders",
	}
	require.Len(t, names, len(expected))
	for i, suffix := range expected {
		assert.Contains(t, names[i], suffix, "migration %d", i)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Loyalty Points!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_loyalty_points.sql"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "-- +goose Up")
	assert.Contains(t, string(raw), "-- +goose Down")

	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigration_rejectsEmptyName(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestValidateDir_badFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "not_versioned.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	assert.Error(t, ValidateDir(dir))
}

func TestValidateDir_missingDownSection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_broken.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))

	assert.Error(t, ValidateDir(dir))
}
