package models

import "time"

// Employee is a staff resource consumed by service bookings. Bookings keep a
// weak reference to it: deleting an employee nulls the reference and never
// invalidates existing bookings.
type Employee struct {
	ID        string    `db:"id" json:"id"`
	VendorID  string    `db:"vendor_id" json:"vendor_id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
