package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/marketloop/booking-api/internal/models"
)

// BookingRepository reads and mutates booking rows. Rows are only ever
// created through the ledger's claim conversion, so there is no Create here.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository builds the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, vendor_id, product_id, order_line_id, employee_id, booking_date, start_minute, end_minute, status, customer_name, customer_email, customer_phone, created_at, updated_at`

// FindByID returns one booking or sql.ErrNoRows.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &booking, nil
}

// FindByOrderLine returns the booking created for an order line, if any.
func (r *BookingRepository) FindByOrderLine(ctx context.Context, orderLineID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_line_id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, orderLineID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking by order line: %w", err)
	}
	return &booking, nil
}

// List returns a page of bookings matching the filter, newest first,
// together with the unpaginated count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	where := ` WHERE vendor_id = $1`
	args := []interface{}{filter.VendorID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += ` AND booking_date >= $` + strconv.Itoa(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += ` AND booking_date <= $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings` + where + ` ORDER BY booking_date DESC, start_minute DESC`
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PageSize)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, (page-1)*filter.PageSize)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, total, nil
}

// ListOverlapping returns the vendor's non-cancelled bookings on a date whose
// interval overlaps [startMinute, endMinute). Used by employee
// auto-assignment.
func (r *BookingRepository) ListOverlapping(ctx context.Context, vendorID string, date time.Time, startMinute, endMinute int) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
WHERE vendor_id = $1 AND booking_date = $2 AND status <> 'cancelled' AND start_minute < $3 AND end_minute > $4`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, vendorID, date, endMinute, startMinute); err != nil {
		return nil, fmt.Errorf("list overlapping bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking to the given status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	const query = `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
