package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/strrl/intake-intel/internal/db"
	"github.com/strrl/intake-intel/internal/models"
)

// Loader reads entries and usage logs from JSON array or newline-delimited
// JSON files. Paths may be DuckDB glob patterns.
type Loader struct {
	db *sql.DB
}

func NewLoader() (*Loader, error) {
	database, err := db.GetDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}

	return &Loader{db: database}, nil
}

// Payload assembles a payload from an entries file and an optional logs file.
func (l *Loader) Payload(ctx context.Context, entriesPath, logsPath string) (*models.Payload, error) {
	payload := &models.Payload{}

	if entriesPath != "" {
		entries, err := l.Entries(ctx, entriesPath)
		if err != nil {
			return nil, err
		}
		payload.Entries = entries
	}

	if logsPath != "" {
		logs, err := l.UsageLogs(ctx, logsPath)
		if err != nil {
			return nil, err
		}
		payload.UsageLogs = logs
	}

	return payload, nil
}

func (l *Loader) Entries(ctx context.Context, path string) ([]models.Entry, error) {
	records, err := l.objects(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries from %s: %w", path, err)
	}

	entries := make([]models.Entry, 0, len(records))
	for i, record := range records {
		var entry models.Entry
		if err := json.Unmarshal([]byte(record), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d in %s: %w", i, path, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (l *Loader) UsageLogs(ctx context.Context, path string) ([]models.UsageLog, error) {
	records, err := l.objects(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage logs from %s: %w", path, err)
	}

	logs := make([]models.UsageLog, 0, len(records))
	for i, record := range records {
		var log models.UsageLog
		if err := json.Unmarshal([]byte(record), &log); err != nil {
			return nil, fmt.Errorf("failed to decode usage log %d in %s: %w", i, path, err)
		}
		logs = append(logs, log)
	}
	return logs, nil
}

// objects returns every top-level JSON object in the file as raw text, in
// file order. Raw text keeps id types and timestamp strings untouched.
func (l *Loader) objects(ctx context.Context, path string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT CAST(json AS VARCHAR)
		FROM read_json_objects(%s, format = 'auto')
	`, db.Literal(path))

	return db.QueryStrings(ctx, l.db, query)
}
