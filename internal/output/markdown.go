package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/strrl/intake-intel/internal/models"
)

func ReportMarkdown(report models.Report) string {
	var sb strings.Builder
	sb.WriteString("# Data Intelligence Report\n\n")

	writeCleanup(&sb, report.Cleanup)
	if report.UsagePatterns != nil {
		writeUsage(&sb, *report.UsagePatterns)
	}
	writeEnriched(&sb, report.EnrichedEntries)
	writeDeduplication(&sb, report.Deduplication)
	writeAnomalies(&sb, report.Anomalies)

	return sb.String()
}

func writeCleanup(sb *strings.Builder, c models.CleanupResult) {
	sb.WriteString("## Cleanup\n\n")
	sb.WriteString(fmt.Sprintf("**Total entries:** %d\n", c.CleanupStats.TotalEntries))
	sb.WriteString(fmt.Sprintf("**Active:** %d\n", c.CleanupStats.ActiveEntries))
	sb.WriteString(fmt.Sprintf("**Flagged:** %d\n\n", c.CleanupStats.FlaggedEntries))

	if len(c.FlaggedForCleanup) == 0 {
		return
	}

	sb.WriteString("| ID | Reason | Age (days) | Last access (days) |\n")
	sb.WriteString("|----|--------|------------|--------------------|\n")
	for _, f := range c.FlaggedForCleanup {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d |\n", idText(f.ID), f.Reason, f.AgeDays, f.LastAccessDays))
	}
	sb.WriteString("\n")
}

func writeUsage(sb *strings.Builder, u models.UsagePatterns) {
	sb.WriteString("## Usage Patterns\n\n")

	writeResources := func(title string, items []models.ResourceFrequency) {
		sb.WriteString(fmt.Sprintf("### %s\n\n", title))
		if len(items) == 0 {
			sb.WriteString("_none_\n\n")
			return
		}
		for _, r := range items {
			sb.WriteString(fmt.Sprintf("- %s: %d accesses (%.1f%%)\n", idText(r.ResourceID), r.AccessCount, r.Frequency*100))
		}
		sb.WriteString("\n")
	}

	writeResources("Frequently accessed", u.FrequentlyAccessed)
	writeResources("Rarely accessed", u.RarelyAccessed)

	for _, p := range u.PeakHours {
		sb.WriteString(fmt.Sprintf("**Peak hour:** %02d:00 (%d accesses)\n\n", p.Hour, p.Count))
	}
}

func writeEnriched(sb *strings.Builder, entries []models.EnrichedEntry) {
	sb.WriteString("## Enriched Entries\n\n")
	if len(entries) == 0 {
		sb.WriteString("_none_\n\n")
		return
	}

	for _, e := range entries {
		l := e.Labels
		sb.WriteString(fmt.Sprintf("### Entry %s\n\n", idText(e.Entry.IDValue())))
		sb.WriteString(fmt.Sprintf("- **Sentiment:** %s (%.2f)\n", l.Sentiment.Label, l.Sentiment.Confidence))
		sb.WriteString(fmt.Sprintf("- **Type:** %s (%.2f)\n", l.Type.Category, l.Type.Confidence))
		sb.WriteString(fmt.Sprintf("- **Intent:** %s (%.2f)\n", l.Intent.Intent, l.Intent.Confidence))
		sb.WriteString(fmt.Sprintf("- **Urgency:** %s (%.2f)\n", l.Urgency.Level, l.Urgency.Confidence))
		if l.FileCategory != nil {
			sb.WriteString(fmt.Sprintf("- **File category:** %s (%.2f)\n", l.FileCategory.Category, l.FileCategory.Confidence))
		}
		if len(l.Entities) > 0 {
			sb.WriteString(fmt.Sprintf("- **Entities:** %s\n", entitiesText(l.Entities)))
		}
		if content := strings.TrimSpace(e.Entry.Content); content != "" {
			sb.WriteString(fmt.Sprintf("\n> %s\n", truncate(content, 200)))
		}
		sb.WriteString("\n")
	}
}

func writeDeduplication(sb *strings.Builder, d models.DeduplicationResult) {
	sb.WriteString("## Duplicates\n\n")
	sb.WriteString(fmt.Sprintf("**Groups:** %d\n", d.DeduplicationStats.DuplicateGroups))
	sb.WriteString(fmt.Sprintf("**Unique entries:** %d\n\n", d.DeduplicationStats.UniqueEntries))

	for i, g := range d.Duplicates {
		sb.WriteString(fmt.Sprintf("### Group %d: primary %s\n\n", i+1, idText(g.Primary.IDValue())))
		for j, dup := range g.Duplicates {
			sb.WriteString(fmt.Sprintf("- %s (similarity %.2f)\n", idText(dup.IDValue()), g.SimilarityScores[j]))
		}
		sb.WriteString("\n")
	}
}

func writeAnomalies(sb *strings.Builder, a models.AnomalyResult) {
	s := a.AnomalyStats
	sb.WriteString("## Anomalies\n\n")
	sb.WriteString(fmt.Sprintf("**Total:** %d (high %d, medium %d, low %d)\n\n",
		s.TotalAnomalies, s.HighSeverity, s.MediumSeverity, s.LowSeverity))

	for _, an := range a.Anomalies {
		line := fmt.Sprintf("- **[%s] %s:** %s", strings.ToUpper(string(an.Severity)), an.Type, an.Description)
		if len(an.Entries) > 0 {
			ids := make([]string, 0, len(an.Entries))
			for _, id := range an.Entries {
				ids = append(ids, idText(id))
			}
			line += fmt.Sprintf(" (entries: %s)", strings.Join(ids, ", "))
		}
		sb.WriteString(line + "\n")
	}
	if len(a.Anomalies) > 0 {
		sb.WriteString("\n")
	}
}

func KeywordsMarkdown(result models.KeywordResult) string {
	var sb strings.Builder
	sb.WriteString("# Keywords\n\n")

	sections := []struct {
		title    string
		keywords []string
	}{
		{"Combined", result.CombinedKeywords},
		{"RAKE", result.RakeKeywords},
		{"YAKE", result.YakeKeywords},
		{"TF-IDF", result.TFIDFKeywords},
		{"KeyBERT", result.KeyBERTKeywords},
	}

	for _, s := range sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n", s.title))
		if len(s.keywords) == 0 {
			sb.WriteString("_none_\n\n")
			continue
		}
		for i, kw := range s.keywords {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, kw))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func entitiesText(entities models.Entities) string {
	kinds := make([]string, 0, len(entities))
	for kind := range entities {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ReplaceAll(kind, "_", " "), strings.Join(entities[kind], ", ")))
	}
	return strings.Join(parts, "; ")
}

// idText shows string ids without quotes and anything else as raw JSON.
func idText(id json.RawMessage) string {
	if len(id) == 0 || string(id) == "null" {
		return "null"
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return string(id)
}

// truncate cuts s to maxLen characters, never inside a multi-byte rune.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runes := []rune(s); len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
