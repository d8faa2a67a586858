package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "region,amount\nnorth,10\nsouth,12\nbad\neast,\nwest,11\n"

// resetFlags restores every flag to its default so state does not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns combined output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	resetFlags(rootCmd)
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestAnalyzeMarkdown(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)

	out, err := runCmd(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "File: sales.csv")
	assert.Contains(t, out, "Rows: 4")
	assert.Contains(t, out, "[INSIGHTS]")
	assert.Contains(t, out, "1. Dataset Overview")
	assert.Contains(t, out, "[HEAD AND SAMPLE ROWS]")
	assert.Contains(t, out, "[NOTES]")
	assert.Contains(t, out, "skipped row 4 has 1 columns, expected 2")
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)

	out, err := runCmd(t, "analyze", path, "--format", "json", "--sample-rows", "0")
	require.NoError(t, err)
	var rep struct {
		Name    string `json:"name"`
		Summary struct {
			TotalRows      int `json:"totalRows"`
			NumericColumns int `json:"numericColumns"`
		} `json:"summary"`
		Samples  [][]string `json:"samples"`
		Warnings []string   `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "sales.csv", rep.Name)
	assert.Equal(t, 4, rep.Summary.TotalRows)
	assert.Equal(t, 1, rep.Summary.NumericColumns)
	assert.Empty(t, rep.Samples)
	assert.Len(t, rep.Warnings, 1)
}

func TestAnalyzeWritesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "sales.csv", salesCSV)
	dest := filepath.Join(dir, "out", "sales.yaml")

	out, err := runCmd(t, "analyze", path, "-f", "yaml", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote analysis to")
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(b), "summary:")
	assert.Contains(t, string(b), "insights:")
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	txt := writeCSV(t, dir, "notes.txt", "a,b\n1,2\n")
	_, err := runCmd(t, "analyze", txt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".csv extension required")

	empty := writeCSV(t, dir, "header.csv", "a,b\n")
	_, err = runCmd(t, "analyze", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least a header row")

	_, err = runCmd(t, "analyze", writeCSV(t, dir, "x.csv", salesCSV), "--format", "xml")
	assert.Error(t, err)
}

func TestAnalyzeBatchWritesSummaries(t *testing.T) {
	home := t.TempDir()
	writeCSV(t, filepath.Join(home, "d1"), "metrics.csv", "col1,col2\nA,1\nB,2\nC,3\n")
	writeCSV(t, filepath.Join(home, "d2"), "metrics.csv", "col1,col2\nA,1\nB,2\nC,3\n")
	outDir := filepath.Join(home, "summaries")

	out, err := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "-o", outDir, "--sample-rows", "0", "-w", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "[2/2]")

	for _, name := range []string{"metrics.summary.md", "metrics__2.summary.md"} {
		b, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(b), "[DATASET SUMMARY]")
		assert.NotContains(t, string(b), "[HEAD AND SAMPLE ROWS]")
	}
}

func TestAnalyzeBatchReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeCSV(t, dir, "good.csv", salesCSV)
	bad := writeCSV(t, dir, "bad.csv", "a,b\n1\n")

	out, err := runCmd(t, "analyze-batch", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "⚠ Warning:")
	assert.Contains(t, out, "good.csv")
}

func TestStats(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)

	out, err := runCmd(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "amount (n=3)")
	assert.Contains(t, out, "mean:     11")
	assert.Contains(t, out, "outliers: 0")

	out, err = runCmd(t, "stats", path, "region")
	require.NoError(t, err)
	assert.Contains(t, out, "column region is text, skipping")

	_, err = runCmd(t, "stats", path, "nope")
	assert.Error(t, err)
}

func TestStatsJSON(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)

	out, err := runCmd(t, "stats", path, "amount", "--json")
	require.NoError(t, err)
	var got []struct {
		Column     string `json:"column"`
		Statistics struct {
			Median float64 `json:"median"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "amount", got[0].Column)
	assert.InDelta(t, 11.0, got[0].Statistics.Median, 1e-9)
}

func TestAsk(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)

	out, err := runCmd(t, "ask", path, "any", "missing", "values?")
	require.NoError(t, err)
	assert.Contains(t, out, "I found missing data in your dataset")
	assert.Contains(t, out, "amount: 1 missing values (25.0%)")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "sales.csv", salesCSV)
	dest := filepath.Join(dir, "clean.csv")

	out, err := runCmd(t, "export", path, "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Exported sales.csv")
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "region,amount\nnorth,10\nsouth,12\neast,\nwest,11", string(b))

	out, err = runCmd(t, "export", path, "--type", "report", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Data Analysis Report")
	assert.Contains(t, out, "Dataset: sales.csv")
}

func TestConfigSetAndShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCmd(t, "--config", cfgPath, "config", "set", "sample_rows", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved config")

	_, err = runCmd(t, "--config", cfgPath, "config", "set", "report_format", "yml")
	require.NoError(t, err)

	out, err = runCmd(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "sample_rows: 2")
	assert.Contains(t, out, "report_format: yaml")

	_, err = runCmd(t, "--config", cfgPath, "config", "set", "nope", "1")
	assert.Error(t, err)
}
