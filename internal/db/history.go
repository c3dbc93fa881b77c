package db

import (
	"context"
	"fmt"

	"github.com/kwame/agrimarket/internal/types"
)

// LogImport appends one entry to the import history ledger.
func (db *DB) LogImport(ctx context.Context, entry types.ImportHistoryEntry) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO import_history (file_name, kind, status, record_count, created_at)
		 VALUES ($1, $2, $3, $4, NOW())`,
		entry.FileName, entry.Kind, entry.Status, entry.RecordCount,
	)
	if err != nil {
		return fmt.Errorf("failed to log import: %w", err)
	}
	return nil
}

// ListImportHistory returns past import sessions, newest first.
func (db *DB) ListImportHistory(ctx context.Context, limit int) ([]types.ImportHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, file_name, kind, status, record_count, created_at
		 FROM import_history ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import history: %w", err)
	}
	defer rows.Close()

	var entries []types.ImportHistoryEntry
	for rows.Next() {
		var e types.ImportHistoryEntry
		if err := rows.Scan(&e.ID, &e.FileName, &e.Kind, &e.Status, &e.RecordCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
