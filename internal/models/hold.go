package models

import "time"

// HoldStatus enumerates the lifecycle of a pre-purchase hold.
type HoldStatus string

const (
	// HoldActive counts toward slot capacity.
	HoldActive HoldStatus = "active"
	// HoldConsumed means the hold became a booking; the booking carries the
	// claim from then on.
	HoldConsumed HoldStatus = "consumed"
	// HoldReleased frees the claim (cart line removed, re-selection, or TTL
	// sweep).
	HoldReleased HoldStatus = "released"
)

// Hold is a transient capacity claim tied to a shopping-cart line. While
// active and unexpired it blocks one unit of the slot's capacity, even
// though no booking row exists yet.
type Hold struct {
	ID          string     `db:"id" json:"id"`
	VendorID    string     `db:"vendor_id" json:"vendor_id"`
	ProductID   string     `db:"product_id" json:"product_id"`
	CartID      *string    `db:"cart_id" json:"cart_id,omitempty"`
	BookingDate time.Time  `db:"booking_date" json:"booking_date"`
	StartMinute int        `db:"start_minute" json:"start_minute"`
	EndMinute   int        `db:"end_minute" json:"end_minute"`
	Status      HoldStatus `db:"status" json:"status"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the hold's TTL has elapsed at the given instant.
func (h *Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}
