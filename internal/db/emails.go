package db

import (
	"context"
	"fmt"

	"github.com/kwame/agrimarket/internal/types"
)

// LogEmail persists one simulated transactional send.
func (db *DB) LogEmail(ctx context.Context, msg *types.EmailMessage) (*types.EmailMessage, error) {
	result := *msg
	err := db.pool.QueryRow(ctx,
		`INSERT INTO email_log (recipient, subject, body, template, sent_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, sent_at`,
		msg.To, msg.Subject, msg.Body, msg.Template,
	).Scan(&result.ID, &result.SentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log email: %w", err)
	}
	return &result, nil
}

// ListEmails returns logged sends newest first.
func (db *DB) ListEmails(ctx context.Context, limit int) ([]types.EmailMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, recipient, subject, body, template, sent_at
		 FROM email_log ORDER BY sent_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	var messages []types.EmailMessage
	for rows.Next() {
		var m types.EmailMessage
		if err := rows.Scan(&m.ID, &m.To, &m.Subject, &m.Body, &m.Template, &m.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
