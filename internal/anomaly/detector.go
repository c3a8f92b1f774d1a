package anomaly

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/strrl/intake-intel/internal/models"
)

const (
	TypeDuplicateContent = "duplicate_content"
	TypeRapidSubmissions = "rapid_submissions"
	TypeExcessiveAccess  = "excessive_access"

	unknownIP = "unknown"
)

type Config struct {
	RapidGap             time.Duration
	RapidMinTimestamps   int
	RapidMinCount        int
	ExcessiveAccessLimit int
}

func DefaultConfig() Config {
	return Config{
		RapidGap:             time.Minute,
		RapidMinTimestamps:   6,
		RapidMinCount:        4,
		ExcessiveAccessLimit: 100,
	}
}

type Detector struct {
	config Config
}

func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.RapidGap <= 0 {
		cfg.RapidGap = def.RapidGap
	}
	if cfg.RapidMinTimestamps <= 0 {
		cfg.RapidMinTimestamps = def.RapidMinTimestamps
	}
	if cfg.RapidMinCount <= 0 {
		cfg.RapidMinCount = def.RapidMinCount
	}
	if cfg.ExcessiveAccessLimit <= 0 {
		cfg.ExcessiveAccessLimit = def.ExcessiveAccessLimit
	}
	return &Detector{config: cfg}
}

// Detect runs every check and derives the severity summary from the result.
func (d *Detector) Detect(entries []models.Entry, logs []models.UsageLog) models.AnomalyResult {
	anomalies := []models.Anomaly{}

	if len(entries) > 0 {
		anomalies = append(anomalies, d.duplicateContent(entries)...)
		if a, ok := d.rapidSubmissions(entries); ok {
			anomalies = append(anomalies, a)
		}
	}
	anomalies = append(anomalies, d.excessiveAccess(logs)...)

	return models.AnomalyResult{
		Anomalies:    anomalies,
		AnomalyStats: Summarize(anomalies),
	}
}

func (d *Detector) duplicateContent(entries []models.Entry) []models.Anomaly {
	var found []models.Anomaly
	firstSeen := make(map[uint64]json.RawMessage)

	for _, entry := range entries {
		hash := xxh3.HashString(entry.Content + entry.Offer)
		if first, ok := firstSeen[hash]; ok {
			found = append(found, models.Anomaly{
				Type:        TypeDuplicateContent,
				Severity:    models.SeverityHigh,
				Description: "Identical content submitted multiple times",
				Entries:     []json.RawMessage{first, entry.IDValue()},
			})
			continue
		}
		firstSeen[hash] = entry.IDValue()
	}

	return found
}

func (d *Detector) rapidSubmissions(entries []models.Entry) (models.Anomaly, bool) {
	var times []time.Time
	for _, entry := range entries {
		if ts, ok := models.ParseTimestamp(entry.CreatedAt); ok {
			times = append(times, ts)
		}
	}

	if len(times) < d.config.RapidMinTimestamps {
		return models.Anomaly{}, false
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	rapid := 0
	for i := 1; i < len(times); i++ {
		if times[i].Sub(times[i-1]) < d.config.RapidGap {
			rapid++
		}
	}

	if rapid < d.config.RapidMinCount {
		return models.Anomaly{}, false
	}

	return models.Anomaly{
		Type:        TypeRapidSubmissions,
		Severity:    models.SeverityMedium,
		Description: fmt.Sprintf("%d submissions within 1 minute of each other", rapid),
		Count:       rapid,
	}, true
}

func (d *Detector) excessiveAccess(logs []models.UsageLog) []models.Anomaly {
	var order []string
	counts := make(map[string]int)

	for _, log := range logs {
		ip := log.IPAddress
		if ip == "" {
			ip = unknownIP
		}
		if _, seen := counts[ip]; !seen {
			order = append(order, ip)
		}
		counts[ip]++
	}

	var found []models.Anomaly
	for _, ip := range order {
		if counts[ip] <= d.config.ExcessiveAccessLimit {
			continue
		}
		found = append(found, models.Anomaly{
			Type:        TypeExcessiveAccess,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("Excessive access from IP: %s", ip),
			Count:       counts[ip],
			IPAddress:   ip,
		})
	}

	return found
}

// Summarize counts anomalies by severity.
func Summarize(anomalies []models.Anomaly) models.AnomalyStats {
	stats := models.AnomalyStats{TotalAnomalies: len(anomalies)}
	for _, a := range anomalies {
		switch a.Severity {
		case models.SeverityHigh:
			stats.HighSeverity++
		case models.SeverityMedium:
			stats.MediumSeverity++
		case models.SeverityLow:
			stats.LowSeverity++
		}
	}
	return stats
}
