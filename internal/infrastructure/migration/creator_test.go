package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stockledger/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"add lot notes", "add_lot_notes"},
		{"Add-Lot  Notes!", "add_lot_notes"},
		{"  trailing__", "trailing"},
		{"v2 units", "v2_units"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init schema")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init_schema.up.sql"), first.UpPath)
	assert.FileExists(t, first.DownPath)

	second, err := CreateMigration(dir, "Add lot notes")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)

	content, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Add lot notes")

	_, err = CreateMigration(dir, "???")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_add_notes.up.sql",
		"000001_init.up.sql",
		"000001_init.down.sql",
		"README.md",
		"3_Bad-Name.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: 1, Name: "init", HasDown: true},
		{Version: 2, Name: "add_notes"},
	}, got)

	none, err := ListMigrations(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		match := migrationFileRE.FindStringSubmatch(e.Name())
		require.NotNil(t, match, "unexpected file %s", e.Name())
		if match[3] == "up" {
			ups++
		} else {
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}
