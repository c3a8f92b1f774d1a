package labels

import (
	"math"
	"regexp"
	"strings"

	"github.com/strrl/intake-intel/internal/models"
)

// keywordSet is one row of an ordered lookup table. Order decides ties.
type keywordSet struct {
	Name     string
	Keywords []string
}

type entityPattern struct {
	Kind    string
	Pattern *regexp.Regexp
}

type Enricher struct {
	positiveWords  map[string]struct{}
	negativeWords  map[string]struct{}
	serviceTypes   []keywordSet
	intents        []keywordSet
	urgentWords    []string
	mediumWords    []string
	entityPatterns []entityPattern
	fileCategories []keywordSet
}

func NewEnricher() *Enricher {
	return &Enricher{
		positiveWords: toSet([]string{"good", "great", "excellent", "amazing", "wonderful", "fantastic", "outstanding", "professional"}),
		negativeWords: toSet([]string{"bad", "terrible", "awful", "horrible", "poor", "disappointing", "unprofessional", "spam"}),
		serviceTypes: []keywordSet{
			{"roofing", []string{"roof", "shingle", "gutter", "leak", "repair roof"}},
			{"landscaping", []string{"lawn", "garden", "tree", "landscape", "mowing"}},
			{"cleaning", []string{"clean", "house cleaning", "maid", "sanitize", "vacuum"}},
			{"pest_control", []string{"pest", "bug", "insect", "exterminator", "rodent"}},
			{"home_improvement", []string{"renovation", "remodel", "construction", "repair", "improvement"}},
			{"security", []string{"security", "alarm", "camera", "monitoring", "protection"}},
			{"solar", []string{"solar", "panel", "energy", "renewable", "electricity"}},
		},
		intents: []keywordSet{
			{"quote_request", []string{"quote", "estimate", "price", "cost", "how much"}},
			{"scheduling", []string{"schedule", "appointment", "when", "available", "time"}},
			{"information", []string{"tell me", "information", "details", "learn more"}},
			{"complaint", []string{"problem", "issue", "complaint", "dissatisfied", "wrong"}},
			{"sales_pitch", []string{"offer", "service", "company", "business", "professional"}},
		},
		urgentWords: []string{"urgent", "emergency", "immediate", "asap", "now", "today", "critical"},
		mediumWords: []string{"soon", "this week", "limited time", "expires"},
		entityPatterns: []entityPattern{
			{"phone_numbers", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
			{"emails", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)},
			{"urls", regexp.MustCompile(`https?://[^\s]+`)},
			{"money", regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?`)},
			{"dates", regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
		},
		fileCategories: []keywordSet{
			{"image", []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}},
			{"document", []string{"pdf", "doc", "docx", "txt"}},
			{"spreadsheet", []string{"xls", "xlsx", "csv"}},
			{"presentation", []string{"ppt", "pptx"}},
			{"video", []string{"mp4", "avi", "mov", "wmv"}},
			{"archive", []string{"zip", "rar", "7z", "tar"}},
		},
	}
}

// Enrich labels free text. fileType is an extension without the dot; when it
// is empty the file category is left nil.
func (e *Enricher) Enrich(content, fileType string) models.Labels {
	labels := models.Labels{
		Sentiment: e.Sentiment(content),
		Type:      e.ContentType(content),
		Intent:    e.Intent(content),
		Urgency:   e.Urgency(content),
		Entities:  e.Entities(content),
	}

	if fileType != "" {
		category := e.FileCategory(fileType)
		labels.FileCategory = &category
	}

	return labels
}

// EnrichEntry returns a labeled copy of entry.
func (e *Enricher) EnrichEntry(entry models.Entry) models.EnrichedEntry {
	return models.EnrichedEntry{
		Entry:  entry,
		Labels: e.Enrich(entry.Text(), entry.FileType()),
	}
}

func (e *Enricher) Sentiment(text string) models.Sentiment {
	words := strings.Fields(strings.ToLower(text))

	var pos, neg int
	for _, word := range words {
		if _, ok := e.positiveWords[word]; ok {
			pos++
		}
		if _, ok := e.negativeWords[word]; ok {
			neg++
		}
	}

	switch {
	case pos > neg:
		return models.Sentiment{Label: "positive", Confidence: scaledConfidence(pos, len(words))}
	case neg > pos:
		return models.Sentiment{Label: "negative", Confidence: scaledConfidence(neg, len(words))}
	default:
		return models.Sentiment{Label: "neutral", Confidence: 0.5}
	}
}

func (e *Enricher) ContentType(text string) models.ContentType {
	lower := strings.ToLower(text)

	best, bestScore := "", 0
	for _, set := range e.serviceTypes {
		score := 0
		for _, keyword := range set.Keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = set.Name, score
		}
	}

	if bestScore == 0 {
		return models.ContentType{Category: "general", Confidence: 0.3}
	}

	return models.ContentType{
		Category:   best,
		Confidence: scaledConfidence(bestScore, len(strings.Fields(text))),
	}
}

func (e *Enricher) Intent(text string) models.Intent {
	lower := strings.ToLower(text)

	for _, set := range e.intents {
		if containsAny(lower, set.Keywords) {
			return models.Intent{Intent: set.Name, Confidence: 0.7}
		}
	}

	return models.Intent{Intent: "general", Confidence: 0.3}
}

func (e *Enricher) Urgency(text string) models.Urgency {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, e.urgentWords):
		return models.Urgency{Level: "high", Confidence: 0.8}
	case containsAny(lower, e.mediumWords):
		return models.Urgency{Level: "medium", Confidence: 0.6}
	default:
		return models.Urgency{Level: "low", Confidence: 0.4}
	}
}

func (e *Enricher) Entities(text string) models.Entities {
	entities := models.Entities{}
	for _, p := range e.entityPatterns {
		if matches := p.Pattern.FindAllString(text, -1); len(matches) > 0 {
			entities[p.Kind] = matches
		}
	}
	return entities
}

func (e *Enricher) FileCategory(fileType string) models.FileCategory {
	if fileType == "" {
		return models.FileCategory{Category: "unknown", Confidence: 0}
	}

	parts := strings.Split(strings.ToLower(fileType), ".")
	ext := parts[len(parts)-1]

	for _, set := range e.fileCategories {
		for _, candidate := range set.Keywords {
			if ext == candidate {
				return models.FileCategory{Category: set.Name, Confidence: 0.9}
			}
		}
	}

	return models.FileCategory{Category: "other", Confidence: 0.3}
}

// scaledConfidence is hits/total*10 capped at 0.9.
func scaledConfidence(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Min(0.9, float64(hits)/float64(total)*10)
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
