package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marketloop/booking-api/internal/models"
)

// AvailabilityRepository manages vendor availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository builds the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const windowColumns = `id, vendor_id, day_of_week, start_minute, end_minute, slot_duration_minutes, employee_count, created_at, updated_at`

// ListByVendor returns all windows for a vendor ordered by weekday and start.
func (r *AvailabilityRepository) ListByVendor(ctx context.Context, vendorID string) ([]models.AvailabilityWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM availability_windows WHERE vendor_id = $1 ORDER BY day_of_week ASC, start_minute ASC`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, vendorID); err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}
	return windows, nil
}

// FindByID returns one window or sql.ErrNoRows.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.AvailabilityWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM availability_windows WHERE id = $1`
	var window models.AvailabilityWindow
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find availability window: %w", err)
	}
	return &window, nil
}

// ListByVendorAndDay returns the vendor's windows for one weekday.
func (r *AvailabilityRepository) ListByVendorAndDay(ctx context.Context, vendorID string, dayOfWeek int) ([]models.AvailabilityWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM availability_windows WHERE vendor_id = $1 AND day_of_week = $2 ORDER BY start_minute ASC`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, vendorID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list windows for weekday: %w", err)
	}
	return windows, nil
}

// Create inserts a new window.
func (r *AvailabilityRepository) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	window.CreatedAt = now
	window.UpdatedAt = now

	const query = `
INSERT INTO availability_windows (id, vendor_id, day_of_week, start_minute, end_minute, slot_duration_minutes, employee_count, created_at, updated_at)
VALUES (:id, :vendor_id, :day_of_week, :start_minute, :end_minute, :slot_duration_minutes, :employee_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("insert availability window: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a window. Edits are not validated
// against existing bookings; a shrunk window can strand bookings derived from
// the old shape.
func (r *AvailabilityRepository) Update(ctx context.Context, window *models.AvailabilityWindow) error {
	window.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE availability_windows
SET day_of_week = :day_of_week,
    start_minute = :start_minute,
    end_minute = :end_minute,
    slot_duration_minutes = :slot_duration_minutes,
    employee_count = :employee_count,
    updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, window)
	if err != nil {
		return fmt.Errorf("update availability window: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a window.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete availability window: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
