package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treasurymatch/treasury-match/internal/infrastructure/config"
)

func writeTempCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig() *config.Config {
	return &config.Config{
		Reconcile: config.ReconcileConfig{DefaultTolerance: "0.01", MaxDatasets: 8, MaxRuns: 8},
		Observability: config.ObservabilityConfig{
			Logging: config.LoggingConfig{Level: "error", Format: "text"},
		},
	}
}

func TestRunReconcileWritesCSVReport(t *testing.T) {
	dir := t.TempDir()
	query := writeTempCSV(t, dir, "orders.csv",
		"name,amount,order_time\nAlice,100.00,2024-01-05 09:00:00\nBob,25.50,2024-01-06 10:00:00\n")
	treasury := writeTempCSV(t, dir, "receipts.csv",
		"name,amount\nAlice,100.00\n")
	out := filepath.Join(dir, "result.csv")

	flags := &ReconcileFlags{
		QueryFile:      query,
		TreasuryFile:   treasury,
		QueryName:      "name",
		QueryAmount:    "amount",
		QueryDate:      "order_time",
		TreasuryName:   "name",
		TreasuryAmount: "amount",
		Output:         out,
	}

	require.NoError(t, RunReconcile(testConfig(), flags))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "\xEF\xBB\xBF"))
	assert.Contains(t, text, "query_name")
	assert.Contains(t, text, "Alice")
	assert.Contains(t, text, "Bob")
}

func TestRunReconcileRequiresBothFiles(t *testing.T) {
	flags := &ReconcileFlags{QueryFile: "only-one.csv"}
	err := RunReconcile(testConfig(), flags)
	assert.Error(t, err)
}

func TestRunReconcileUnknownSheet(t *testing.T) {
	dir := t.TempDir()
	query := writeTempCSV(t, dir, "orders.csv", "name,amount,order_time\n")
	treasury := writeTempCSV(t, dir, "receipts.csv", "name,amount\n")

	flags := &ReconcileFlags{
		QueryFile:      query,
		TreasuryFile:   treasury,
		QuerySheet:     "missing",
		QueryName:      "name",
		QueryAmount:    "amount",
		QueryDate:      "order_time",
		TreasuryName:   "name",
		TreasuryAmount: "amount",
		Output:         filepath.Join(dir, "result.csv"),
	}

	err := RunReconcile(testConfig(), flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
