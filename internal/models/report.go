package models

import "encoding/json"

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type FlaggedEntry struct {
	ID             json.RawMessage `json:"id"`
	Reason         string          `json:"reason"`
	AgeDays        int             `json:"age_days"`
	LastAccessDays int             `json:"last_access_days"`
}

type CleanupStats struct {
	TotalEntries   int `json:"total_entries"`
	ActiveEntries  int `json:"active_entries"`
	FlaggedEntries int `json:"flagged_entries"`
}

type CleanupResult struct {
	ActiveEntries     []Entry        `json:"active_entries"`
	FlaggedForCleanup []FlaggedEntry `json:"flagged_for_cleanup"`
	CleanupStats      CleanupStats   `json:"cleanup_stats"`
}

type ResourceFrequency struct {
	ResourceID  json.RawMessage `json:"resource_id"`
	AccessCount int             `json:"access_count"`
	Frequency   float64         `json:"frequency"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type UsagePatterns struct {
	FrequentlyAccessed []ResourceFrequency `json:"frequently_accessed"`
	RarelyAccessed     []ResourceFrequency `json:"rarely_accessed"`
	PeakHours          []HourCount         `json:"peak_hours"`
	UsageTrends        map[string]any      `json:"usage_trends"`
}

// EnrichedEntry is a copy of an entry with its labels attached under ai_labels.
type EnrichedEntry struct {
	Entry  Entry
	Labels Labels
}

func (e EnrichedEntry) MarshalJSON() ([]byte, error) {
	fields := e.Entry.Fields()
	labels, err := json.Marshal(e.Labels)
	if err != nil {
		return nil, err
	}
	fields["ai_labels"] = labels
	return json.Marshal(fields)
}

type DuplicateGroup struct {
	Primary          Entry     `json:"primary"`
	Duplicates       []Entry   `json:"duplicates"`
	SimilarityScores []float64 `json:"similarity_scores"`
}

type DeduplicationStats struct {
	TotalEntries    int `json:"total_entries"`
	DuplicateGroups int `json:"duplicate_groups"`
	UniqueEntries   int `json:"unique_entries"`
}

type DeduplicationResult struct {
	Duplicates         []DuplicateGroup   `json:"duplicates"`
	UniqueEntries      []Entry            `json:"unique_entries"`
	DeduplicationStats DeduplicationStats `json:"deduplication_stats"`
}

// Anomaly carries the fixed type/severity/description triple plus whatever
// context the check attaches.
type Anomaly struct {
	Type        string            `json:"type"`
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
	Entries     []json.RawMessage `json:"entries,omitempty"`
	Count       int               `json:"count,omitempty"`
	IPAddress   string            `json:"ip_address,omitempty"`
}

type AnomalyStats struct {
	TotalAnomalies int `json:"total_anomalies"`
	HighSeverity   int `json:"high_severity"`
	MediumSeverity int `json:"medium_severity"`
	LowSeverity    int `json:"low_severity"`
}

type AnomalyResult struct {
	Anomalies    []Anomaly    `json:"anomalies"`
	AnomalyStats AnomalyStats `json:"anomaly_stats"`
}

type Report struct {
	Cleanup         CleanupResult       `json:"cleanup"`
	UsagePatterns   *UsagePatterns      `json:"usage_patterns,omitempty"`
	EnrichedEntries []EnrichedEntry     `json:"enriched_entries"`
	Deduplication   DeduplicationResult `json:"deduplication"`
	Anomalies       AnomalyResult       `json:"anomalies"`
}

type KeywordResult struct {
	RakeKeywords     []string `json:"rake_keywords"`
	YakeKeywords     []string `json:"yake_keywords"`
	TFIDFKeywords    []string `json:"tfidf_keywords"`
	KeyBERTKeywords  []string `json:"keybert_keywords"`
	CombinedKeywords []string `json:"combined_keywords"`
}

// EmptyKeywordResult has every list present and empty.
func EmptyKeywordResult() KeywordResult {
	return KeywordResult{
		RakeKeywords:     []string{},
		YakeKeywords:     []string{},
		TFIDFKeywords:    []string{},
		KeyBERTKeywords:  []string{},
		CombinedKeywords: []string{},
	}
}
