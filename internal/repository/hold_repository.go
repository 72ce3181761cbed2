package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/marketloop/booking-api/internal/models"
)

// HoldRepository serves the query side of holds: lookups for the cart bridge
// and the expiry sweep. Claim creation lives in LedgerRepository.
type HoldRepository struct {
	db *sqlx.DB
}

// NewHoldRepository builds the repository.
func NewHoldRepository(db *sqlx.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

const holdColumns = `id, vendor_id, product_id, cart_id, booking_date, start_minute, end_minute, status, expires_at, created_at, updated_at`

// FindByID returns one hold or sql.ErrNoRows.
func (r *HoldRepository) FindByID(ctx context.Context, id string) (*models.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`
	var hold models.Hold
	if err := r.db.GetContext(ctx, &hold, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find hold: %w", err)
	}
	return &hold, nil
}

// FindActiveByCartAndProduct returns the cart's current active hold for a
// product, if any. A cart keeps at most one active hold per product line.
func (r *HoldRepository) FindActiveByCartAndProduct(ctx context.Context, cartID, productID string) (*models.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds
WHERE cart_id = $1 AND product_id = $2 AND status = 'active' ORDER BY created_at DESC LIMIT 1`
	var hold models.Hold
	if err := r.db.GetContext(ctx, &hold, query, cartID, productID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find hold for cart: %w", err)
	}
	return &hold, nil
}

// ReleaseExpired flips every active hold whose TTL elapsed before now to
// released and returns how many were swept.
func (r *HoldRepository) ReleaseExpired(ctx context.Context, now time.Time) (int, error) {
	const query = `UPDATE holds SET status = 'released', updated_at = $1 WHERE status = 'active' AND expires_at <= $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("release expired holds: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("release expired holds count: %w", err)
	}
	return int(n), nil
}
