package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/strrl/intake-intel/internal/models"
)

func sampleReport() models.Report {
	entry := models.Entry{ID: models.StringID("lead-1"), Content: "Roof leak\nplease call", FileName: "a.pdf"}
	other := models.Entry{ID: json.RawMessage("42"), Content: "Roof leak please call"}

	return models.Report{
		Cleanup: models.CleanupResult{
			ActiveEntries: []models.Entry{other},
			FlaggedForCleanup: []models.FlaggedEntry{
				{ID: entry.ID, Reason: "old_unused", AgeDays: 90, LastAccessDays: 60},
			},
			CleanupStats: models.CleanupStats{TotalEntries: 2, ActiveEntries: 1, FlaggedEntries: 1},
		},
		EnrichedEntries: []models.EnrichedEntry{{
			Entry: entry,
			Labels: models.Labels{
				Sentiment:    models.Sentiment{Label: "neutral", Confidence: 0.5},
				Type:         models.ContentType{Category: "roofing", Confidence: 0.9},
				Intent:       models.Intent{Intent: "general", Confidence: 0.3},
				Urgency:      models.Urgency{Level: "low", Confidence: 0.4},
				Entities:     models.Entities{"phone_numbers": {"555-123-4567"}},
				FileCategory: &models.FileCategory{Category: "document", Confidence: 0.9},
			},
		}},
		Deduplication: models.DeduplicationResult{
			Duplicates: []models.DuplicateGroup{{
				Primary:          entry,
				Duplicates:       []models.Entry{other},
				SimilarityScores: []float64{0.7},
			}},
			UniqueEntries:      []models.Entry{},
			DeduplicationStats: models.DeduplicationStats{TotalEntries: 2, DuplicateGroups: 1},
		},
		Anomalies: models.AnomalyResult{
			Anomalies: []models.Anomaly{{
				Type:        "duplicate_content",
				Severity:    models.SeverityHigh,
				Description: "Identical content submitted multiple times",
				Entries:     []json.RawMessage{entry.ID, other.ID},
			}},
			AnomalyStats: models.AnomalyStats{TotalAnomalies: 1, HighSeverity: 1},
		},
	}
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatJSON).WriteReport(sampleReport()))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, 1, strings.Count(out, "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"cleanup", "enriched_entries", "deduplication", "anomalies"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "usage_patterns")

	enriched := decoded["enriched_entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "lead-1", enriched["id"])
	assert.Contains(t, enriched, "ai_labels")
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatYAML).WriteReport(sampleReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	cleanup := decoded["cleanup"].(map[string]any)
	stats := cleanup["cleanup_stats"].(map[string]any)
	assert.Equal(t, 2, stats["total_entries"])
}

func TestWriteReportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatMarkdown).WriteReport(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "# Data Intelligence Report")
	assert.Contains(t, out, "| lead-1 | old_unused | 90 | 60 |")
	assert.Contains(t, out, "### Entry lead-1")
	assert.Contains(t, out, "- **File category:** document (0.90)")
	assert.Contains(t, out, "- **Entities:** phone numbers: 555-123-4567")
	assert.Contains(t, out, "> Roof leak please call")
	assert.Contains(t, out, "- 42 (similarity 0.70)")
	assert.Contains(t, out, "- **[HIGH] duplicate_content:** Identical content submitted multiple times (entries: lead-1, 42)")
	assert.NotContains(t, out, "## Usage Patterns")
}

func TestWriteReportMarkdownUsage(t *testing.T) {
	report := sampleReport()
	report.UsagePatterns = &models.UsagePatterns{
		FrequentlyAccessed: []models.ResourceFrequency{{ResourceID: models.StringID("r1"), AccessCount: 3, Frequency: 0.75}},
		PeakHours:          []models.HourCount{{Hour: 9, Count: 3}},
	}

	out := ReportMarkdown(report)
	assert.Contains(t, out, "- r1: 3 accesses (75.0%)")
	assert.Contains(t, out, "**Peak hour:** 09:00 (3 accesses)")
	assert.Contains(t, out, "### Rarely accessed\n\n_none_")
}

func TestWriteKeywords(t *testing.T) {
	result := models.EmptyKeywordResult()
	result.CombinedKeywords = []string{"roof", "leak"}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, "").WriteKeywords(result))
	assert.JSONEq(t, `{
		"rake_keywords": [], "yake_keywords": [], "tfidf_keywords": [],
		"keybert_keywords": [], "combined_keywords": ["roof", "leak"]
	}`, buf.String())

	md := KeywordsMarkdown(result)
	assert.Contains(t, md, "## Combined\n\n1. roof\n2. leak\n")
	assert.Contains(t, md, "## RAKE\n\n_none_")
}

func TestWriteArbitraryDocument(t *testing.T) {
	doc := map[string]string{"version": "dev"}
	markdown := func() string { return "version dev\n" }

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatYAML).Write(doc, markdown))
	assert.Equal(t, "version: dev\n", buf.String())

	buf.Reset()
	require.NoError(t, NewWriter(&buf, FormatMarkdown).Write(doc, markdown))
	assert.Equal(t, "version dev\n", buf.String())
}

func TestUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf, "xml").WriteKeywords(models.EmptyKeywordResult())
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, errors.New(`failed to parse payload: bad "json"`))
	assert.JSONEq(t, `{"error": "failed to parse payload: bad \"json\""}`, buf.String())
}

func TestIDText(t *testing.T) {
	assert.Equal(t, "abc", idText(models.StringID("abc")))
	assert.Equal(t, "7", idText(json.RawMessage("7")))
	assert.Equal(t, "null", idText(nil))
	assert.Equal(t, "null", idText(json.RawMessage("null")))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", 199) + "éé"

	got := truncate(s, 200)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 199)+"é...", got)

	assert.Equal(t, "short", truncate("short", 200))
	assert.Equal(t, "a b", truncate("a\nb", 200))
}

func TestReportMarkdownMultiByteContent(t *testing.T) {
	report := sampleReport()
	report.EnrichedEntries[0].Entry.Content = strings.Repeat("x", 199) + "ñandú"

	out := ReportMarkdown(report)
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "> "+strings.Repeat("x", 199)+"ñ...")
}
