package usage

import (
	"encoding/json"

	"github.com/strrl/intake-intel/internal/models"
)

type Config struct {
	FrequentAbove float64
	RareBelow     float64
}

func DefaultConfig() Config {
	return Config{
		FrequentAbove: 0.1,
		RareBelow:     0.01,
	}
}

type Analyzer struct {
	config Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{config: cfg}
}

// Analyze summarizes how often each resource is accessed and at which hour
// of the day access peaks. Resources between the rare and frequent bounds
// appear in neither list.
func (a *Analyzer) Analyze(logs []models.UsageLog) models.UsagePatterns {
	patterns := models.UsagePatterns{
		FrequentlyAccessed: []models.ResourceFrequency{},
		RarelyAccessed:     []models.ResourceFrequency{},
		PeakHours:          []models.HourCount{},
		UsageTrends:        map[string]any{},
	}

	if len(logs) == 0 {
		return patterns
	}

	resources, counts := countOrdered(logs, func(l models.UsageLog) string { return string(l.ResourceIDValue()) })
	total := float64(len(logs))

	for _, id := range resources {
		count := counts[id]
		frequency := float64(count) / total
		item := models.ResourceFrequency{
			ResourceID:  json.RawMessage(id),
			AccessCount: count,
			Frequency:   frequency,
		}

		if frequency > a.config.FrequentAbove {
			patterns.FrequentlyAccessed = append(patterns.FrequentlyAccessed, item)
		} else if frequency < a.config.RareBelow {
			patterns.RarelyAccessed = append(patterns.RarelyAccessed, item)
		}
	}

	if peak, ok := peakHour(logs); ok {
		patterns.PeakHours = append(patterns.PeakHours, peak)
	}

	return patterns
}

func peakHour(logs []models.UsageLog) (models.HourCount, bool) {
	var order []int
	counts := make(map[int]int)

	for _, log := range logs {
		ts, ok := models.ParseTimestamp(log.Timestamp)
		if !ok {
			continue
		}
		hour := ts.Hour()
		if _, seen := counts[hour]; !seen {
			order = append(order, hour)
		}
		counts[hour]++
	}

	if len(order) == 0 {
		return models.HourCount{}, false
	}

	best := order[0]
	for _, hour := range order[1:] {
		if counts[hour] > counts[best] {
			best = hour
		}
	}

	return models.HourCount{Hour: best, Count: counts[best]}, true
}

// countOrdered counts keys and remembers the order each key was first seen.
func countOrdered(logs []models.UsageLog, key func(models.UsageLog) string) ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)

	for _, log := range logs {
		k := key(log)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	return order, counts
}
