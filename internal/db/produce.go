package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

const produceColumns = `id, farmer_id, name, variety, category, quantity, unit,
	price_per_unit, photos, harvest_time, status, created_at`

func scanProduce(row pgx.Row) (*types.Produce, error) {
	var p types.Produce
	err := row.Scan(
		&p.ID, &p.FarmerID, &p.Name, &p.Variety, &p.Category, &p.Quantity, &p.Unit,
		&p.PricePerUnit, &p.Photos, &p.HarvestTime, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduce inserts a produce listing for a farmer.
func (db *DB) CreateProduce(ctx context.Context, p *types.Produce) (*types.Produce, error) {
	result := *p
	err := db.pool.QueryRow(ctx,
		`INSERT INTO produce (farmer_id, name, variety, category, quantity, unit,
		        price_per_unit, photos, harvest_time, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		 RETURNING id, created_at`,
		p.FarmerID, p.Name, p.Variety, p.Category, p.Quantity, p.Unit,
		p.PricePerUnit, p.Photos, p.HarvestTime, p.Status,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create produce: %w", err)
	}
	return &result, nil
}

// GetProduce retrieves a listing by ID, or nil if not found.
func (db *DB) GetProduce(ctx context.Context, id uuid.UUID) (*types.Produce, error) {
	p, err := scanProduce(db.pool.QueryRow(ctx,
		`SELECT `+produceColumns+` FROM produce WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get produce: %w", err)
	}
	return p, nil
}

// ListProduceByFarmer lists a farmer's produce, newest first.
func (db *DB) ListProduceByFarmer(ctx context.Context, farmerID uuid.UUID) ([]types.Produce, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+produceColumns+` FROM produce WHERE farmer_id = $1 ORDER BY created_at DESC`,
		farmerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list produce: %w", err)
	}
	defer rows.Close()

	var produces []types.Produce
	for rows.Next() {
		p, err := scanProduce(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produce: %w", err)
		}
		produces = append(produces, *p)
	}
	return produces, rows.Err()
}

// SearchProduce powers marketplace browsing: free-text name match plus
// category and status filters, paged.
func (db *DB) SearchProduce(ctx context.Context, query, category string, status types.ProduceStatus, limit, offset int) ([]types.Produce, int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+produceColumns+` FROM produce
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR variety ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR category = $2)
		   AND ($3 = '' OR status = $3)
		 ORDER BY created_at DESC
		 LIMIT $4 OFFSET $5`,
		query, category, string(status), limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search produce: %w", err)
	}
	defer rows.Close()

	var produces []types.Produce
	for rows.Next() {
		p, err := scanProduce(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan produce: %w", err)
		}
		produces = append(produces, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read produce: %w", err)
	}

	var total int
	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM produce
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR variety ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR category = $2)
		   AND ($3 = '' OR status = $3)`,
		query, category, string(status),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count produce: %w", err)
	}

	return produces, total, nil
}

// UpdateProduce updates a listing's editable fields.
func (db *DB) UpdateProduce(ctx context.Context, p *types.Produce) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE produce
		 SET name = $1, variety = $2, category = $3, quantity = $4, unit = $5,
		     price_per_unit = $6, photos = $7, harvest_time = $8, status = $9
		 WHERE id = $10`,
		p.Name, p.Variety, p.Category, p.Quantity, p.Unit,
		p.PricePerUnit, p.Photos, p.HarvestTime, p.Status, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update produce: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteProduce removes a listing.
func (db *DB) DeleteProduce(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM produce WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete produce: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
