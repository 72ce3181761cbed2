package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/marketloop/booking-api/internal/models"
)

// ProductRepository reads the catalog facts the engine needs. The catalog is
// owned elsewhere; this repository never writes.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository builds the repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID returns one product or sql.ErrNoRows.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	const query = `SELECT id, vendor_id, name, is_service, duration_minutes, active FROM products WHERE id = $1`
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}
