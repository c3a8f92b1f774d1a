package cleanup

import (
	"time"

	"github.com/strrl/intake-intel/internal/models"
)

const ReasonOldUnused = "old_unused"

type Config struct {
	ThresholdDays int
}

func DefaultConfig() Config {
	return Config{ThresholdDays: 30}
}

type Analyzer struct {
	config Config
	now    time.Time
}

func NewAnalyzer(cfg Config) *Analyzer {
	return NewAnalyzerAt(cfg, time.Now())
}

// NewAnalyzerAt pins the analyzer's notion of the current time.
func NewAnalyzerAt(cfg Config, now time.Time) *Analyzer {
	if cfg.ThresholdDays <= 0 {
		cfg.ThresholdDays = DefaultConfig().ThresholdDays
	}
	return &Analyzer{config: cfg, now: now}
}

// Analyze partitions entries into active ones and ones recommended for
// cleanup. Nothing is removed from the input.
func (a *Analyzer) Analyze(entries []models.Entry) models.CleanupResult {
	loc := a.now.Location()
	threshold := a.now.AddDate(0, 0, -a.config.ThresholdDays)

	result := models.CleanupResult{
		ActiveEntries:     []models.Entry{},
		FlaggedForCleanup: []models.FlaggedEntry{},
	}

	for _, entry := range entries {
		created := models.Naive(models.ParseTimestampOrDefault(entry.CreatedAt, a.now), loc)
		accessed := models.Naive(models.ParseTimestampOrDefault(entry.LastAccessed, created), loc)

		if created.Before(threshold) && accessed.Before(threshold) {
			result.FlaggedForCleanup = append(result.FlaggedForCleanup, models.FlaggedEntry{
				ID:             entry.IDValue(),
				Reason:         ReasonOldUnused,
				AgeDays:        wholeDays(a.now.Sub(created)),
				LastAccessDays: wholeDays(a.now.Sub(accessed)),
			})
			continue
		}

		result.ActiveEntries = append(result.ActiveEntries, entry)
	}

	result.CleanupStats = models.CleanupStats{
		TotalEntries:   len(entries),
		ActiveEntries:  len(result.ActiveEntries),
		FlaggedEntries: len(result.FlaggedForCleanup),
	}

	return result
}

// wholeDays floors d to days, rounding toward negative infinity.
func wholeDays(d time.Duration) int {
	days := d / (24 * time.Hour)
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return int(days)
}
