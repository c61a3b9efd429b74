package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-ingest/internal/config"
	"github.com/sells-group/lead-ingest/internal/reconcile"
)

// importEnv points the import command at a fresh SQLite database and
// temp-dir output files, restoring the flag globals afterwards.
type importEnv struct {
	dir     string
	output  string
	rejects string
}

func setupImport(t *testing.T) *importEnv {
	t.Helper()
	dir := t.TempDir()
	env := &importEnv{
		dir:     dir,
		output:  filepath.Join(dir, "summary.out"),
		rejects: filepath.Join(dir, "rejects.csv"),
	}

	cfg = &config.Config{
		Store:  config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "leads.db")},
		Import: config.ImportConfig{PageSize: 100},
		Log:    config.LogConfig{Level: "info", Format: "json"},
	}

	old := []any{importFile, importFormat, importOutput, importRejects, importDryRun, importMigrate}
	t.Cleanup(func() {
		importFile = old[0].(string)
		importFormat = old[1].(string)
		importOutput = old[2].(string)
		importRejects = old[3].(string)
		importDryRun = old[4].(bool)
		importMigrate = old[5].(bool)
	})
	importFormat = "json"
	importOutput = env.output
	importRejects = env.rejects
	importDryRun = false
	importMigrate = true

	importCmd.SetContext(context.Background())
	t.Cleanup(func() { importCmd.SetContext(context.TODO()) })
	return env
}

func (env *importEnv) writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(env.dir, "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (env *importEnv) summary(t *testing.T) reconcile.Summary {
	t.Helper()
	data, err := os.ReadFile(env.output)
	require.NoError(t, err)
	var sum reconcile.Summary
	require.NoError(t, json.Unmarshal(data, &sum))
	return sum
}

func TestImportCmd_EndToEnd(t *testing.T) {
	env := setupImport(t)
	importFile = env.writeFile(t, "name,email,phone\nAna Ruiz,ana@ex.com,+34 600 111 222\n,luis@ex.com,\n")

	require.NoError(t, importCmd.RunE(importCmd, nil))

	sum := env.summary(t)
	assert.Equal(t, reconcile.StateReported, sum.State)
	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 1, sum.Invalid)
	require.Len(t, sum.InvalidRows, 1)
	assert.Equal(t, []string{"Name is required"}, sum.InvalidRows[0].Errors)

	f, err := os.Open(env.rejects)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, rejectsHeader, records[0])
	assert.Equal(t, "3", records[1][0])
	assert.Equal(t, "luis@ex.com", records[1][2])
	assert.Equal(t, "Name is required", records[1][7])

	// A second import of the same file inserts nothing.
	require.NoError(t, importCmd.RunE(importCmd, nil))
	again := env.summary(t)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 1, again.Duplicates)
	assert.True(t, again.NoChanges)
}

func TestImportCmd_DryRunYAML(t *testing.T) {
	env := setupImport(t)
	importFile = env.writeFile(t, "name,email\nAna,ana@ex.com\n")
	importDryRun = true
	importFormat = "yaml"

	require.NoError(t, importCmd.RunE(importCmd, nil))

	data, err := os.ReadFile(env.output)
	require.NoError(t, err)
	var sum reconcile.Summary
	require.NoError(t, yaml.Unmarshal(data, &sum))
	assert.True(t, sum.DryRun)
	assert.Equal(t, 1, sum.Inserted)

	// Nothing was written: a real import still inserts the row.
	importDryRun = false
	importFormat = "json"
	require.NoError(t, importCmd.RunE(importCmd, nil))
	assert.Equal(t, 1, env.summary(t).Inserted)
}

func TestImportCmd_BadFormat(t *testing.T) {
	setupImport(t)
	importFormat = "xml"

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported --format")
}

func TestImportCmd_InvalidConfig(t *testing.T) {
	setupImport(t)
	cfg.Import.PageSize = 0

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import.page_size must be > 0")
}

func TestImportCmd_UnreadableFileStillReports(t *testing.T) {
	env := setupImport(t)
	importFile = filepath.Join(env.dir, "missing.csv")

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import")

	sum := env.summary(t)
	assert.Equal(t, reconcile.StateAborted, sum.State)
}

func TestMigrateCmd_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "leads.db")},
	}
	migrateCmd.SetContext(context.Background())
	defer migrateCmd.SetContext(context.TODO())

	require.NoError(t, migrateCmd.RunE(migrateCmd, nil))
	// Idempotent.
	require.NoError(t, migrateCmd.RunE(migrateCmd, nil))
}

func TestMigrateCmd_PostgresNeedsURL(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "postgres"}}
	migrateCmd.SetContext(context.Background())
	defer migrateCmd.SetContext(context.TODO())

	err := migrateCmd.RunE(migrateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}
