package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

// GetCMSContent retrieves a keyed piece of site copy, or nil if the key is unset.
func (db *DB) GetCMSContent(ctx context.Context, key string) (*types.CMSContent, error) {
	var c types.CMSContent
	err := db.pool.QueryRow(ctx,
		`SELECT key, value, updated_at FROM cms_content WHERE key = $1`, key,
	).Scan(&c.Key, &c.Value, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cms content: %w", err)
	}
	return &c, nil
}

// ListCMSContent returns every keyed entry, ordered by key.
func (db *DB) ListCMSContent(ctx context.Context) ([]types.CMSContent, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT key, value, updated_at FROM cms_content ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cms content: %w", err)
	}
	defer rows.Close()

	var entries []types.CMSContent
	for rows.Next() {
		var c types.CMSContent
		if err := rows.Scan(&c.Key, &c.Value, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cms content: %w", err)
		}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}

// SetCMSContent upserts a keyed entry.
func (db *DB) SetCMSContent(ctx context.Context, key, value string) (*types.CMSContent, error) {
	var c types.CMSContent
	err := db.pool.QueryRow(ctx,
		`INSERT INTO cms_content (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		 RETURNING key, value, updated_at`,
		key, value,
	).Scan(&c.Key, &c.Value, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to set cms content: %w", err)
	}
	return &c, nil
}
