package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strrl/intake-intel/internal/config"
	"github.com/strrl/intake-intel/internal/models"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

const samplePayload = `{
  "entries": [
    {"id": "1", "content": "leaky roof needs repair", "offer": "free quote", "createdAt": "2024-01-01T00:00:00", "fileName": "roof.JPG", "source": "web"},
    {"id": "2", "content": "leaky roof needs repair", "offer": "free quote", "createdAt": "2024-06-29T00:00:00"},
    {"id": 3, "content": "lawn mowing this week", "createdAt": "2024-06-28T08:00:00"}
  ],
  "usage_logs": [
    {"resource_id": "r1", "ip_address": "10.0.0.1", "timestamp": "2024-06-29T09:15:00"},
    {"resource_id": "r1", "ip_address": "10.0.0.1", "timestamp": "2024-06-29T09:45:00"}
  ]
}`

func TestProcess(t *testing.T) {
	payload, err := models.ParsePayload([]byte(samplePayload))
	require.NoError(t, err)

	report, stats, err := NewAt(DefaultConfig(), now).Process(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, Stats{
		TotalEntries:    3,
		UsageLogs:       2,
		FlaggedEntries:  1,
		EnrichedEntries: 3,
		DuplicateGroups: 1,
		Anomalies:       1,
	}, stats)

	require.Len(t, report.Cleanup.FlaggedForCleanup, 1)
	assert.JSONEq(t, `"1"`, string(report.Cleanup.FlaggedForCleanup[0].ID))

	require.NotNil(t, report.UsagePatterns)
	assert.Equal(t, []models.HourCount{{Hour: 9, Count: 2}}, report.UsagePatterns.PeakHours)

	require.Len(t, report.EnrichedEntries, 3)
	assert.Equal(t, "image", report.EnrichedEntries[0].Labels.FileCategory.Category)
	assert.Nil(t, report.EnrichedEntries[2].Labels.FileCategory)

	assert.Equal(t, "duplicate_content", report.Anomalies.Anomalies[0].Type)
}

func TestProcessEchoesUnknownFields(t *testing.T) {
	payload, err := models.ParsePayload([]byte(samplePayload))
	require.NoError(t, err)

	report, _, err := NewAt(DefaultConfig(), now).Process(context.Background(), payload)
	require.NoError(t, err)

	encoded, err := json.Marshal(report.EnrichedEntries[0])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "web", decoded["source"])
	assert.Contains(t, decoded, "ai_labels")

	encoded, err = json.Marshal(report.Deduplication.UniqueEntries[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 3, "content": "lawn mowing this week", "createdAt": "2024-06-28T08:00:00"}`, string(encoded))
}

func TestProcessWithoutUsageLogs(t *testing.T) {
	payload := &models.Payload{}

	report, stats, err := NewAt(DefaultConfig(), now).Process(context.Background(), payload)
	require.NoError(t, err)

	assert.Nil(t, report.UsagePatterns)
	assert.Equal(t, Stats{}, stats)

	encoded, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "usage_patterns")
	assert.Contains(t, string(encoded), `"enriched_entries":[]`)
}

func TestProcessNilPayload(t *testing.T) {
	_, _, err := New(DefaultConfig()).Process(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(DefaultConfig()).Process(ctx, &models.Payload{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigFrom(t *testing.T) {
	c := config.Default()
	c.Cleanup.ThresholdDays = 7
	c.Dedup.ReportExactSimilarity = true
	c.Anomaly.RapidGapSeconds = 30

	cfg := ConfigFrom(&c)
	assert.Equal(t, 7, cfg.Cleanup.ThresholdDays)
	assert.True(t, cfg.Dedup.ReportExactSimilarity)
	assert.Equal(t, 0.6, cfg.Dedup.Threshold)
	assert.Equal(t, 30*time.Second, cfg.Anomaly.RapidGap)
	assert.Equal(t, 100, cfg.Anomaly.ExcessiveAccessLimit)
}
