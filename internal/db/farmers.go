package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

const farmerColumns = `id, name, farm_name, location, phone, email, farm_size,
	profile_completeness, buyer_rating, successful_transactions,
	phone_verified, identity_verified, bank_verified, registered_at, updated_at`

// scanFarmer reads one farmer row.
func scanFarmer(row pgx.Row) (*types.Farmer, error) {
	var f types.Farmer
	err := row.Scan(
		&f.ID, &f.Name, &f.FarmName, &f.Location, &f.Phone, &f.Email, &f.FarmSize,
		&f.ProfileCompleteness, &f.BuyerRating, &f.SuccessfulTxns,
		&f.PhoneVerified, &f.IdentityVerified, &f.BankVerified, &f.RegisteredAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFarmer inserts a farmer profile and its produce listings.
func (db *DB) CreateFarmer(ctx context.Context, farmer *types.Farmer) (*types.Farmer, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	created, err := insertFarmer(ctx, tx, farmer)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit farmer: %w", err)
	}
	return created, nil
}

// CreateFarmers inserts a batch of imported farmers atomically: either the
// whole batch lands or none of it does. It implements importer.FarmerCreator.
func (db *DB) CreateFarmers(ctx context.Context, farmers []types.Farmer) ([]types.Farmer, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	created := make([]types.Farmer, 0, len(farmers))
	for i := range farmers {
		farmer, err := insertFarmer(ctx, tx, &farmers[i])
		if err != nil {
			return nil, err
		}
		created = append(created, *farmer)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit farmer batch: %w", err)
	}
	return created, nil
}

// insertFarmer writes one farmer and its produces inside tx.
func insertFarmer(ctx context.Context, tx pgx.Tx, farmer *types.Farmer) (*types.Farmer, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO farmers (name, farm_name, location, phone, email, farm_size,
		        profile_completeness, registered_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 RETURNING id`,
		farmer.Name, farmer.FarmName, farmer.Location, farmer.Phone, farmer.Email,
		farmer.FarmSize, farmer.ProfileCompleteness, farmer.RegisteredAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create farmer: %w", err)
	}

	result := *farmer
	result.ID = id
	for i := range result.Produces {
		p := &result.Produces[i]
		p.FarmerID = id
		err := tx.QueryRow(ctx,
			`INSERT INTO produce (farmer_id, name, variety, category, quantity, unit,
			        price_per_unit, photos, harvest_time, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id`,
			p.FarmerID, p.Name, p.Variety, p.Category, p.Quantity, p.Unit,
			p.PricePerUnit, p.Photos, p.HarvestTime, p.Status, p.CreatedAt,
		).Scan(&p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create produce for farmer %s: %w", id, err)
		}
	}
	return &result, nil
}

// GetFarmer retrieves a farmer with produce listings, or nil if not found.
func (db *DB) GetFarmer(ctx context.Context, id uuid.UUID) (*types.Farmer, error) {
	farmer, err := scanFarmer(db.pool.QueryRow(ctx,
		`SELECT `+farmerColumns+` FROM farmers WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}

	produces, err := db.ListProduceByFarmer(ctx, id)
	if err != nil {
		return nil, err
	}
	farmer.Produces = produces
	return farmer, nil
}

// ListFarmers lists farmers ordered by registration, with optional free-text
// and location filters. Returns the page plus the unfiltered total.
func (db *DB) ListFarmers(ctx context.Context, query, location string, limit, offset int) ([]types.Farmer, int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+farmerColumns+` FROM farmers
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR farm_name ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR location ILIKE '%' || $2 || '%')
		 ORDER BY registered_at DESC
		 LIMIT $3 OFFSET $4`,
		query, location, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list farmers: %w", err)
	}
	defer rows.Close()

	var farmers []types.Farmer
	for rows.Next() {
		farmer, err := scanFarmer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan farmer: %w", err)
		}
		farmers = append(farmers, *farmer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read farmers: %w", err)
	}

	var total int
	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM farmers
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR farm_name ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR location ILIKE '%' || $2 || '%')`,
		query, location,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count farmers: %w", err)
	}

	return farmers, total, nil
}

// UpdateFarmer updates a farmer's editable profile fields.
func (db *DB) UpdateFarmer(ctx context.Context, farmer *types.Farmer) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE farmers
		 SET name = $1, farm_name = $2, location = $3, phone = $4, email = $5,
		     farm_size = $6, profile_completeness = $7, updated_at = NOW()
		 WHERE id = $8`,
		farmer.Name, farmer.FarmName, farmer.Location, farmer.Phone, farmer.Email,
		farmer.FarmSize, farmer.ProfileCompleteness, farmer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update farmer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteFarmer removes a farmer and, via cascade, its produce listings.
func (db *DB) DeleteFarmer(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM farmers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete farmer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetFarmerVerification updates the three verification flags in one write.
func (db *DB) SetFarmerVerification(ctx context.Context, id uuid.UUID, phone, identity, bank bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE farmers
		 SET phone_verified = $1, identity_verified = $2, bank_verified = $3, updated_at = NOW()
		 WHERE id = $4`,
		phone, identity, bank, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecordTransaction increments a farmer's successful transaction counter and
// folds a buyer rating into the running average.
func (db *DB) RecordTransaction(ctx context.Context, id uuid.UUID, rating float64) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE farmers
		 SET buyer_rating = (buyer_rating * successful_transactions + $1) / (successful_transactions + 1),
		     successful_transactions = successful_transactions + 1,
		     updated_at = NOW()
		 WHERE id = $2`,
		rating, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
