package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

// CreateAccount inserts a login identity with its role decided up front.
func (db *DB) CreateAccount(ctx context.Context, account *types.Account) (*types.Account, error) {
	result := *account
	err := db.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash, role, profile_id, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, created_at`,
		account.Email, account.PasswordHash, account.Role, account.ProfileID,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &result, nil
}

// GetAccountByEmail retrieves an account for login, or nil if not found.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*types.Account, error) {
	var a types.Account
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, role, profile_id, created_at
		 FROM accounts WHERE lower(email) = lower($1)`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.ProfileID, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}
