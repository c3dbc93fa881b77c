package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

const buyerColumns = `id, name, company, email, phone, plan, plan_expires_at,
	unlocks_remaining, created_at, updated_at`

func scanBuyer(row pgx.Row) (*types.Buyer, error) {
	var b types.Buyer
	err := row.Scan(
		&b.ID, &b.Name, &b.Company, &b.Email, &b.Phone, &b.Plan, &b.PlanExpiresAt,
		&b.UnlocksRemaining, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBuyer inserts a buyer on the free plan.
func (db *DB) CreateBuyer(ctx context.Context, buyer *types.Buyer) (*types.Buyer, error) {
	result := *buyer
	if result.Plan == "" {
		result.Plan = types.PlanFree
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO buyers (name, company, email, phone, plan, unlocks_remaining, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		result.Name, result.Company, result.Email, result.Phone, result.Plan, result.Plan.UnlockQuota(),
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create buyer: %w", err)
	}
	result.UnlocksRemaining = result.Plan.UnlockQuota()
	return &result, nil
}

// GetBuyer retrieves a buyer by ID, or nil if not found.
func (db *DB) GetBuyer(ctx context.Context, id uuid.UUID) (*types.Buyer, error) {
	buyer, err := scanBuyer(db.pool.QueryRow(ctx,
		`SELECT `+buyerColumns+` FROM buyers WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}
	return buyer, nil
}

// ListBuyers pages through buyers for admin moderation.
func (db *DB) ListBuyers(ctx context.Context, limit, offset int) ([]types.Buyer, int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+buyerColumns+` FROM buyers ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list buyers: %w", err)
	}
	defer rows.Close()

	var buyers []types.Buyer
	for rows.Next() {
		buyer, err := scanBuyer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan buyer: %w", err)
		}
		buyers = append(buyers, *buyer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read buyers: %w", err)
	}

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM buyers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count buyers: %w", err)
	}
	return buyers, total, nil
}

// UpdateBuyer updates a buyer's editable profile fields.
func (db *DB) UpdateBuyer(ctx context.Context, buyer *types.Buyer) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE buyers SET name = $1, company = $2, email = $3, phone = $4, updated_at = NOW()
		 WHERE id = $5`,
		buyer.Name, buyer.Company, buyer.Email, buyer.Phone, buyer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update buyer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteBuyer removes a buyer and its unlock records.
func (db *DB) DeleteBuyer(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM buyers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete buyer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ActivateSubscription switches a buyer onto a paid plan, resetting the
// unlock quota for the new period.
func (db *DB) ActivateSubscription(ctx context.Context, id uuid.UUID, plan types.SubscriptionPlan, expiresAt time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE buyers
		 SET plan = $1, plan_expires_at = $2, unlocks_remaining = $3, updated_at = NOW()
		 WHERE id = $4`,
		plan, expiresAt, plan.UnlockQuota(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// HasUnlock reports whether the buyer has already unlocked this farmer.
func (db *DB) HasUnlock(ctx context.Context, buyerID, farmerID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM contact_unlocks WHERE buyer_id = $1 AND farmer_id = $2)`,
		buyerID, farmerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check unlock: %w", err)
	}
	return exists, nil
}

// ConsumeUnlock atomically decrements the buyer's quota and records the
// unlock. Returns the post-decrement quota so callers report an accurate
// count under concurrent unlocks, and false without consuming anything when
// the quota is spent.
func (db *DB) ConsumeUnlock(ctx context.Context, buyerID, farmerID uuid.UUID) (int, bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var remaining int
	err = tx.QueryRow(ctx,
		`UPDATE buyers SET unlocks_remaining = unlocks_remaining - 1, updated_at = NOW()
		 WHERE id = $1 AND unlocks_remaining > 0
		 RETURNING unlocks_remaining`,
		buyerID,
	).Scan(&remaining)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to consume unlock quota: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO contact_unlocks (buyer_id, farmer_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (buyer_id, farmer_id) DO NOTHING`,
		buyerID, farmerID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to record unlock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to commit unlock: %w", err)
	}
	return remaining, true, nil
}
