package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strrl/intake-intel/internal/ingest"
	"github.com/strrl/intake-intel/internal/models"
	"github.com/strrl/intake-intel/internal/pipeline"
)

var (
	analyzeEntries       string
	analyzeLogs          string
	analyzeThresholdDays int
	analyzeExactScores   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [json]",
	Short: "Run the data intelligence pipeline over entries and usage logs",
	Long: `Analyze a batch of entries and optional usage logs. Input is either a
single JSON document {"entries": [...], "usage_logs": [...]} passed as the
argument, or files given with --entries and --logs (JSON arrays or
newline-delimited JSON).

The report contains cleanup recommendations, usage patterns, labeled
entries, duplicate groups and anomalies.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeEntries, "entries", "", "File of entries (JSON array or JSONL)")
	analyzeCmd.Flags().StringVar(&analyzeLogs, "logs", "", "File of usage logs (JSON array or JSONL)")
	analyzeCmd.Flags().IntVar(&analyzeThresholdDays, "threshold-days", 30, "Days without creation or access before an entry is flagged")
	analyzeCmd.Flags().BoolVar(&analyzeExactScores, "exact-scores", false, "Report computed similarity instead of the fixed duplicate score")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	payload, err := loadPayload(cmd.Context(), args)
	if err != nil {
		return err
	}

	debugf("loaded %d entries and %d usage logs", len(payload.Entries), len(payload.UsageLogs))

	p := pipeline.New(pipeline.ConfigFrom(settings))
	report, stats, err := p.Process(cmd.Context(), payload)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	debugf("flagged %d of %d entries", stats.FlaggedEntries, stats.TotalEntries)
	debugf("found %d duplicate groups and %d anomalies", stats.DuplicateGroups, stats.Anomalies)

	return newWriter(cmd).WriteReport(report)
}

func loadPayload(ctx context.Context, args []string) (*models.Payload, error) {
	fromFiles := analyzeEntries != "" || analyzeLogs != ""

	switch {
	case len(args) == 1 && fromFiles:
		return nil, errors.New("pass either a JSON argument or --entries/--logs, not both")
	case len(args) == 1:
		return models.ParsePayload([]byte(args[0]))
	case fromFiles:
		loader, err := ingest.NewLoader()
		if err != nil {
			return nil, fmt.Errorf("failed to create loader: %w", err)
		}
		return loader.Payload(ctx, analyzeEntries, analyzeLogs)
	default:
		return nil, errors.New("No data provided")
	}
}
