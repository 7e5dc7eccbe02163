package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AQUIIS_DATABASE_PATH", filepath.Join(dir, "aquiis.db"))
	t.Setenv("AQUIIS_LOGGER_OUTPUT_PATH", filepath.Join(dir, "aquiis.log"))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "initial_schema")
	assert.Contains(t, out, "Applied")

	// Idempotent
	_, err = run(t, "migrate")
	require.NoError(t, err)
}

func TestSweepCommand_EmptyDatabase(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "sweep")
	require.NoError(t, err)

	var report service.SweepReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Total())
}

func TestDividendsExport_NoPool(t *testing.T) {
	dir := setupEnv(t)
	target := filepath.Join(dir, "report.xlsx")

	_, err := run(t, "dividends", "export", "--org", "org-1", "--year", "2024", "--out", target)
	require.Error(t, err)
	assert.Equal(t, "No investment pool exists for 2024", err.Error())

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "failed export leaves no file")
}

func TestDividendsCalculate_InvalidAmount(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "dividends", "calculate", "--org", "org-1", "--year", "2024", "--earnings", "lots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --earnings")
}

func TestDividendsCalculate_RequiresOrg(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "dividends", "calculate", "--year", "2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "org")
}
