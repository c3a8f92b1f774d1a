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

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

const payload = `{
	"entries": [
		{"id": "1", "content": "Leaky roof needs repair ASAP", "offer": "call 555-123-4567", "createdAt": "2020-01-01T00:00:00Z"},
		{"id": "2", "content": "Leaky roof needs repair ASAP", "offer": "call 555-123-4567"}
	]
}`

func TestAnalyzeJSONArgument(t *testing.T) {
	stdout, _, err := execute(t, "analyze", payload)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.NotContains(t, report, "usage_patterns")

	cleanup := report["cleanup"].(map[string]any)
	assert.Len(t, cleanup["flagged_for_cleanup"], 1)

	dedup := report["deduplication"].(map[string]any)
	assert.Len(t, dedup["duplicates"], 1)

	anomalies := report["anomalies"].(map[string]any)
	stats := anomalies["anomaly_stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["high_severity"])
}

func TestAnalyzeExactScores(t *testing.T) {
	stdout, _, err := execute(t, "analyze", "--exact-scores", payload)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"similarity_scores":[1]`)

	stdout, _, err = execute(t, "analyze", payload)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"similarity_scores":[0.7]`)
}

func TestAnalyzeMarkdown(t *testing.T) {
	stdout, _, err := execute(t, "analyze", "--format", "markdown", payload)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Data Intelligence Report")
	assert.Contains(t, stdout, "## Anomalies")
}

func TestAnalyzeFromFiles(t *testing.T) {
	dir := t.TempDir()
	entries := filepath.Join(dir, "entries.jsonl")
	logs := filepath.Join(dir, "logs.json")
	require.NoError(t, os.WriteFile(entries, []byte(`{"id": "a", "content": "mow the lawn"}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(logs, []byte(`[{"resource_id": "r1", "ip_address": "1.2.3.4", "timestamp": "2024-06-01T14:00:00"}]`), 0o644))

	stdout, _, err := execute(t, "analyze", "--entries", entries, "--logs", logs)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	usage := report["usage_patterns"].(map[string]any)
	assert.Len(t, usage["frequently_accessed"], 1)
}

func TestAnalyzeErrors(t *testing.T) {
	_, _, err := execute(t, "analyze")
	require.Error(t, err)
	assert.Equal(t, "No data provided", err.Error())

	_, _, err = execute(t, "analyze", "{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse payload")

	_, _, err = execute(t, "analyze", "--entries", "x.jsonl", payload)
	require.Error(t, err)

	_, _, err = execute(t, "analyze", "--format", "xml", payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestKeywords(t *testing.T) {
	stdout, _, err := execute(t, "keywords", "--lexicon-source", "fallback",
		"The roof leak needs repair. The roof leak is urgent! Call about the roof leak today.")
	require.NoError(t, err)

	var result map[string][]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, []string{"leak", "roof"}, result["yake_keywords"])
	assert.Equal(t, "leak", result["combined_keywords"][0])
}

func TestKeywordsShortText(t *testing.T) {
	stdout, _, err := execute(t, "keywords", "--lexicon-source", "fallback", "hi")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"rake_keywords": [], "yake_keywords": [], "tfidf_keywords": [],
		"keybert_keywords": [], "combined_keywords": []
	}`, stdout)
}

func TestKeywordsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("solar panel install quote\nsolar panel cleaning quote\n"), 0o644))

	stdout, _, err := execute(t, "keywords", "--lexicon-source", "fallback", "--top-k", "1", "--file", path)
	require.NoError(t, err)

	var result map[string][]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, []string{"solar"}, result["keybert_keywords"])
	assert.Len(t, result["rake_keywords"], 1)
}

func TestKeywordsSentenceSplitting(t *testing.T) {
	const text = "Roof repair costs $4.50 per sq. ft. for roof repair"

	for _, args := range [][]string{
		{"keywords", "--lexicon-source", "fallback", text},
		{"keywords", "--lexicon-source", "fallback", "--split-sentences", text},
	} {
		stdout, _, err := execute(t, args...)
		require.NoError(t, err)

		var result map[string][]string
		require.NoError(t, json.Unmarshal([]byte(stdout), &result))
		assert.Equal(t, []string{"roof repair costs per sq ft", "roof repair"}, result["rake_keywords"], args)
	}
}

func TestKeywordsErrors(t *testing.T) {
	_, _, err := execute(t, "keywords")
	require.Error(t, err)
	assert.Equal(t, "No text provided", err.Error())

	_, _, err = execute(t, "keywords", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestVerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "analyze", "--verbose", payload)
	require.NoError(t, err)
	assert.Contains(t, stderr, "[intake-intel ")
	assert.Contains(t, stderr, "loaded 2 entries")
	assert.NotContains(t, stdout, "loaded")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version": "dev", "git_commit": "unknown", "build_date": "unknown"}`, stdout)

	stdout, _, err = execute(t, "version", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "version: dev")

	stdout, _, err = execute(t, "version", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "intake-intel version dev")
	assert.Contains(t, stdout, "- commit: unknown")
}
