package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marketloop/booking-api/internal/models"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

// LedgerRepository owns the capacity claim lifecycle: counting claims,
// inserting holds, and converting holds into bookings. Every mutation that
// could oversell a slot runs inside a transaction that locks the vendor's
// availability windows for the target weekday, so concurrent claims on the
// same slot serialize at the database row even across processes.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository builds the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ClaimParams describes one capacity claim attempt.
type ClaimParams struct {
	VendorID    string
	ProductID   string
	CartID      *string
	Date        time.Time
	StartMinute int
	EndMinute   int
	ExpiresAt   time.Time
}

// A claim counts against a slot when its interval covers the slot-start
// instant, matching how capacity was always computed for bookings.
const (
	countBookingsQuery = `SELECT COUNT(*) FROM bookings
WHERE vendor_id = $1 AND booking_date = $2 AND status IN ('pending', 'confirmed')
  AND start_minute <= $3 AND end_minute > $3`

	countHoldsQuery = `SELECT COUNT(*) FROM holds
WHERE vendor_id = $1 AND booking_date = $2 AND status = 'active' AND expires_at > $3
  AND start_minute <= $4 AND end_minute > $4
  AND ($5::text IS NULL OR cart_id IS DISTINCT FROM $5)`

	insertHoldQuery = `
INSERT INTO holds (id, vendor_id, product_id, cart_id, booking_date, start_minute, end_minute, status, expires_at, created_at, updated_at)
VALUES (:id, :vendor_id, :product_id, :cart_id, :booking_date, :start_minute, :end_minute, :status, :expires_at, :created_at, :updated_at)`
)

// CountClaimsAt returns the number of claims (non-cancelled bookings plus
// active unexpired holds) covering the slot instant. excludeCart removes the
// caller's own cart from the hold count. This read is not serialized with
// concurrent claims; only ClaimSlot's counts are authoritative.
func (r *LedgerRepository) CountClaimsAt(ctx context.Context, vendorID string, date time.Time, slotMinute int, excludeCart *string, now time.Time) (int, error) {
	var booked int
	if err := r.db.GetContext(ctx, &booked, countBookingsQuery, vendorID, date, slotMinute); err != nil {
		return 0, fmt.Errorf("count bookings at slot: %w", err)
	}
	var held int
	if err := r.db.GetContext(ctx, &held, countHoldsQuery, vendorID, date, now, slotMinute, excludeCart); err != nil {
		return 0, fmt.Errorf("count holds at slot: %w", err)
	}
	return booked + held, nil
}

// ClaimSlot atomically checks capacity and inserts an active hold for the
// slot. It fails with ErrVendorClosed when the vendor has no window for the
// date's weekday, and with ErrSlotFull when every capacity unit covering the
// slot instant is already claimed. A failed claim leaves nothing behind.
func (r *LedgerRepository) ClaimSlot(ctx context.Context, params ClaimParams) (hold *models.Hold, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var windows []models.AvailabilityWindow
	const lockQuery = `SELECT ` + windowColumns + ` FROM availability_windows
WHERE vendor_id = $1 AND day_of_week = $2 ORDER BY start_minute ASC FOR UPDATE`
	if err = tx.SelectContext(ctx, &windows, lockQuery, params.VendorID, int(params.Date.Weekday())); err != nil {
		return nil, fmt.Errorf("lock availability windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, appErrors.ErrVendorClosed
	}

	// Overlapping windows add their capacities for the slots they share.
	capacity := 0
	for _, w := range windows {
		if w.StartMinute <= params.StartMinute && params.StartMinute < w.EndMinute {
			capacity += w.EmployeeCount
		}
	}
	if capacity == 0 {
		return nil, appErrors.Clone(appErrors.ErrSlotFull, "time slot is outside the vendor's hours")
	}

	now := time.Now().UTC()
	var booked int
	if err = tx.GetContext(ctx, &booked, countBookingsQuery, params.VendorID, params.Date, params.StartMinute); err != nil {
		return nil, fmt.Errorf("count bookings at slot: %w", err)
	}
	var held int
	if err = tx.GetContext(ctx, &held, countHoldsQuery, params.VendorID, params.Date, now, params.StartMinute, params.CartID); err != nil {
		return nil, fmt.Errorf("count holds at slot: %w", err)
	}
	if capacity-booked-held < 1 {
		return nil, appErrors.ErrSlotFull
	}

	hold = &models.Hold{
		ID:          uuid.NewString(),
		VendorID:    params.VendorID,
		ProductID:   params.ProductID,
		CartID:      params.CartID,
		BookingDate: params.Date,
		StartMinute: params.StartMinute,
		EndMinute:   params.EndMinute,
		Status:      models.HoldActive,
		ExpiresAt:   params.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err = sqlx.NamedExecContext(ctx, tx, insertHoldQuery, hold); err != nil {
		return nil, fmt.Errorf("insert hold: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return hold, nil
}

// ReleaseHold frees an active hold. Releasing a hold that is already
// released or consumed is a no-op.
func (r *LedgerRepository) ReleaseHold(ctx context.Context, holdID string) error {
	const query = `UPDATE holds SET status = 'released', updated_at = $1 WHERE id = $2 AND status = 'active'`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), holdID); err != nil {
		return fmt.Errorf("release hold: %w", err)
	}
	return nil
}

// ConvertHold turns an active hold into a booking row in one transaction.
// Capacity is not re-checked: the hold already holds the claim, and marking
// it consumed in the same transaction keeps the claim count constant.
func (r *LedgerRepository) ConvertHold(ctx context.Context, holdID string, booking *models.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin convert transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.lockActiveHold(ctx, tx, holdID); err != nil {
		return err
	}

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	const insertBooking = `
INSERT INTO bookings (id, vendor_id, product_id, order_line_id, employee_id, booking_date, start_minute, end_minute, status, customer_name, customer_email, customer_phone, created_at, updated_at)
VALUES (:id, :vendor_id, :product_id, :order_line_id, :employee_id, :booking_date, :start_minute, :end_minute, :status, :customer_name, :customer_email, :customer_phone, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insertBooking, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = r.consumeHold(ctx, tx, holdID, now); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit convert: %w", err)
	}
	return nil
}

// ApplyReschedule moves an existing booking onto the slot claimed by holdID.
// The booking row and the hold flip in one transaction, so the booking's old
// claim frees exactly when its new one takes effect. On any failure the
// booking keeps its previous date, times and claim.
func (r *LedgerRepository) ApplyReschedule(ctx context.Context, holdID string, booking *models.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reschedule transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.lockActiveHold(ctx, tx, holdID); err != nil {
		return err
	}

	now := time.Now().UTC()
	const updateBooking = `
UPDATE bookings
SET booking_date = $1, start_minute = $2, end_minute = $3, employee_id = $4, updated_at = $5
WHERE id = $6`
	var res sql.Result
	res, err = tx.ExecContext(ctx, updateBooking, booking.BookingDate, booking.StartMinute, booking.EndMinute, booking.EmployeeID, now, booking.ID)
	if err != nil {
		return fmt.Errorf("update booking schedule: %w", err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = r.consumeHold(ctx, tx, holdID, now); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reschedule: %w", err)
	}
	return nil
}

func (r *LedgerRepository) lockActiveHold(ctx context.Context, tx *sqlx.Tx, holdID string) error {
	var hold models.Hold
	const query = `SELECT id, vendor_id, product_id, cart_id, booking_date, start_minute, end_minute, status, expires_at, created_at, updated_at
FROM holds WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &hold, query, holdID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "hold not found")
		}
		return fmt.Errorf("lock hold: %w", err)
	}
	if hold.Status != models.HoldActive {
		return appErrors.Clone(appErrors.ErrConflict, "hold already consumed or released")
	}
	if hold.Expired(time.Now().UTC()) {
		return appErrors.ErrHoldExpired
	}
	return nil
}

func (r *LedgerRepository) consumeHold(ctx context.Context, tx *sqlx.Tx, holdID string, now time.Time) error {
	const query = `UPDATE holds SET status = 'consumed', updated_at = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, now, holdID); err != nil {
		return fmt.Errorf("consume hold: %w", err)
	}
	return nil
}
