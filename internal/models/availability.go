package models

import "time"

// AvailabilityWindow is a vendor's standing weekly capacity template for one
// weekday. Times are minutes from midnight; capacity is the number of
// concurrent bookings the vendor can serve during the window.
type AvailabilityWindow struct {
	ID            string    `db:"id" json:"id"`
	VendorID      string    `db:"vendor_id" json:"vendor_id"`
	DayOfWeek     int       `db:"day_of_week" json:"day_of_week"`
	StartMinute   int       `db:"start_minute" json:"start_minute"`
	EndMinute     int       `db:"end_minute" json:"end_minute"`
	SlotDuration  int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	EmployeeCount int       `db:"employee_count" json:"employee_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SlotAvailability is one bookable slot for a concrete date, with the
// capacity remaining at query time. Display data only; enforcement happens
// inside the ledger.
type SlotAvailability struct {
	Slot      string `json:"slot"`
	Remaining int    `json:"remaining"`
}

// DaySchedule lists a vendor's slots for one date.
type DaySchedule struct {
	VendorID string             `json:"vendor_id"`
	Date     string             `json:"date"`
	Slots    []SlotAvailability `json:"slots"`
}
