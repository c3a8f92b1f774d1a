package dedup

import (
	"strings"

	"github.com/strrl/intake-intel/internal/models"
)

// ReportedSimilarity is the score attached to every duplicate unless exact
// scores are requested.
const ReportedSimilarity = 0.7

type Config struct {
	Threshold             float64
	ReportExactSimilarity bool
}

func DefaultConfig() Config {
	return Config{Threshold: 0.6}
}

type Deduplicator struct {
	config Config
}

func NewDeduplicator(cfg Config) *Deduplicator {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	return &Deduplicator{config: cfg}
}

// Deduplicate groups near-identical entries in one greedy pass. Each entry
// ends up either as a group primary, a duplicate in exactly one group, or in
// the unique list. Grouping depends on input order.
func (d *Deduplicator) Deduplicate(entries []models.Entry) models.DeduplicationResult {
	result := models.DeduplicationResult{
		Duplicates:    []models.DuplicateGroup{},
		UniqueEntries: []models.Entry{},
	}

	tokens := make([]map[string]struct{}, len(entries))
	for i, entry := range entries {
		tokens[i] = TokenSet(entry.Text())
	}

	claimed := make([]bool, len(entries))
	for i := range entries {
		if claimed[i] {
			continue
		}

		group := models.DuplicateGroup{
			Primary:          entries[i],
			Duplicates:       []models.Entry{},
			SimilarityScores: []float64{},
		}

		for j := i + 1; j < len(entries); j++ {
			if claimed[j] {
				continue
			}
			similarity := Jaccard(tokens[i], tokens[j])
			if similarity <= d.config.Threshold {
				continue
			}

			score := ReportedSimilarity
			if d.config.ReportExactSimilarity {
				score = similarity
			}
			group.Duplicates = append(group.Duplicates, entries[j])
			group.SimilarityScores = append(group.SimilarityScores, score)
			claimed[j] = true
		}

		if len(group.Duplicates) == 0 {
			result.UniqueEntries = append(result.UniqueEntries, entries[i])
			continue
		}

		claimed[i] = true
		result.Duplicates = append(result.Duplicates, group)
	}

	result.DeduplicationStats = models.DeduplicationStats{
		TotalEntries:    len(entries),
		DuplicateGroups: len(result.Duplicates),
		UniqueEntries:   len(result.UniqueEntries),
	}

	return result
}

// TokenSet is the set of lowercased whitespace-separated tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[token] = struct{}{}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
