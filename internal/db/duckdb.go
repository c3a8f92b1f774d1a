package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	dbInstance *sql.DB
	dbOnce     sync.Once
	dbErr      error
)

// GetDB returns the process-wide in-memory DuckDB handle.
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dbInstance, dbErr = initializeDuckDB()
	})
	return dbInstance, dbErr
}

func initializeDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// json ships with the bundled build; INSTALL is only needed when it does not.
	if _, err := db.Exec("LOAD json"); err != nil {
		if _, err := db.Exec("INSTALL json"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to install JSON extension: %w", err)
		}
		if _, err := db.Exec("LOAD json"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to load JSON extension: %w", err)
		}
	}

	return db, nil
}

// QueryStrings runs a query whose first column is text and collects it.
func QueryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s.Valid {
			out = append(out, s.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// Literal quotes s as a SQL string literal. Table functions such as
// read_json_objects take their path as a constant, not a bind parameter.
func Literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
