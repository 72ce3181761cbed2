package models

import "time"

// BookingStatus enumerates the booking lifecycle.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the lifecycle state machine:
// pending -> confirmed -> completed, pending/confirmed -> cancelled, and
// pending -> completed for order flows that skip explicit confirmation.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case BookingConfirmed:
		return s == BookingPending
	case BookingCompleted:
		return s == BookingPending || s == BookingConfirmed
	case BookingCancelled:
		return true
	}
	return false
}

// Booking is a confirmed or pending claim on one slot. Customer contact
// fields are snapshots taken at creation, not live references.
type Booking struct {
	ID            string        `db:"id" json:"id"`
	VendorID      string        `db:"vendor_id" json:"vendor_id"`
	ProductID     string        `db:"product_id" json:"product_id"`
	OrderLineID   *string       `db:"order_line_id" json:"order_line_id,omitempty"`
	EmployeeID    *string       `db:"employee_id" json:"employee_id,omitempty"`
	BookingDate   time.Time     `db:"booking_date" json:"booking_date"`
	StartMinute   int           `db:"start_minute" json:"start_minute"`
	EndMinute     int           `db:"end_minute" json:"end_minute"`
	Status        BookingStatus `db:"status" json:"status"`
	CustomerName  *string       `db:"customer_name" json:"customer_name,omitempty"`
	CustomerEmail *string       `db:"customer_email" json:"customer_email,omitempty"`
	CustomerPhone *string       `db:"customer_phone" json:"customer_phone,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	VendorID  string
	Status    BookingStatus
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// CustomerContact is the snapshot copied onto a booking at creation.
type CustomerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
