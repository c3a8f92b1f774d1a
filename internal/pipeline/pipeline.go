package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/strrl/intake-intel/internal/anomaly"
	"github.com/strrl/intake-intel/internal/cleanup"
	"github.com/strrl/intake-intel/internal/config"
	"github.com/strrl/intake-intel/internal/dedup"
	"github.com/strrl/intake-intel/internal/labels"
	"github.com/strrl/intake-intel/internal/models"
	"github.com/strrl/intake-intel/internal/usage"
)

var ErrNoPayload = errors.New("no payload provided")

type Pipeline struct {
	cleanup  *cleanup.Analyzer
	usage    *usage.Analyzer
	enricher *labels.Enricher
	dedup    *dedup.Deduplicator
	anomaly  *anomaly.Detector
}

type Config struct {
	Cleanup cleanup.Config
	Usage   usage.Config
	Dedup   dedup.Config
	Anomaly anomaly.Config
}

func DefaultConfig() Config {
	return Config{
		Cleanup: cleanup.DefaultConfig(),
		Usage:   usage.DefaultConfig(),
		Dedup:   dedup.DefaultConfig(),
		Anomaly: anomaly.DefaultConfig(),
	}
}

// ConfigFrom maps resolved settings onto the stage configs.
func ConfigFrom(c *config.Config) Config {
	cfg := DefaultConfig()
	cfg.Cleanup.ThresholdDays = c.Cleanup.ThresholdDays
	cfg.Dedup = dedup.Config{
		Threshold:             c.Dedup.Threshold,
		ReportExactSimilarity: c.Dedup.ReportExactSimilarity,
	}
	cfg.Anomaly = anomaly.Config{
		RapidGap:             time.Duration(c.Anomaly.RapidGapSeconds) * time.Second,
		RapidMinTimestamps:   c.Anomaly.RapidMinTimestamps,
		RapidMinCount:        c.Anomaly.RapidMinCount,
		ExcessiveAccessLimit: c.Anomaly.ExcessiveAccessLimit,
	}
	return cfg
}

func New(cfg Config) *Pipeline {
	return NewAt(cfg, time.Now())
}

// NewAt builds a pipeline whose cleanup stage measures age from now.
func NewAt(cfg Config, now time.Time) *Pipeline {
	return &Pipeline{
		cleanup:  cleanup.NewAnalyzerAt(cfg.Cleanup, now),
		usage:    usage.NewAnalyzer(cfg.Usage),
		enricher: labels.NewEnricher(),
		dedup:    dedup.NewDeduplicator(cfg.Dedup),
		anomaly:  anomaly.NewDetector(cfg.Anomaly),
	}
}

type Stats struct {
	TotalEntries    int
	UsageLogs       int
	FlaggedEntries  int
	EnrichedEntries int
	DuplicateGroups int
	Anomalies       int
}

// Process runs every analysis over the payload. The input is never modified.
func (p *Pipeline) Process(ctx context.Context, payload *models.Payload) (models.Report, Stats, error) {
	var report models.Report
	if payload == nil {
		return report, Stats{}, ErrNoPayload
	}

	stats := Stats{
		TotalEntries: len(payload.Entries),
		UsageLogs:    len(payload.UsageLogs),
	}

	if err := ctx.Err(); err != nil {
		return report, stats, fmt.Errorf("cleanup failed: %w", err)
	}
	report.Cleanup = p.cleanup.Analyze(payload.Entries)
	stats.FlaggedEntries = len(report.Cleanup.FlaggedForCleanup)

	if len(payload.UsageLogs) > 0 {
		if err := ctx.Err(); err != nil {
			return report, stats, fmt.Errorf("usage analysis failed: %w", err)
		}
		patterns := p.usage.Analyze(payload.UsageLogs)
		report.UsagePatterns = &patterns
	}

	if err := ctx.Err(); err != nil {
		return report, stats, fmt.Errorf("enrichment failed: %w", err)
	}
	report.EnrichedEntries = make([]models.EnrichedEntry, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		report.EnrichedEntries = append(report.EnrichedEntries, p.enricher.EnrichEntry(entry))
	}
	stats.EnrichedEntries = len(report.EnrichedEntries)

	if err := ctx.Err(); err != nil {
		return report, stats, fmt.Errorf("deduplication failed: %w", err)
	}
	report.Deduplication = p.dedup.Deduplicate(payload.Entries)
	stats.DuplicateGroups = len(report.Deduplication.Duplicates)

	if err := ctx.Err(); err != nil {
		return report, stats, fmt.Errorf("anomaly detection failed: %w", err)
	}
	report.Anomalies = p.anomaly.Detect(payload.Entries, payload.UsageLogs)
	stats.Anomalies = len(report.Anomalies.Anomalies)

	return report, stats, nil
}
