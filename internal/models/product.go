package models

// Product is the read-only slice of the catalog this engine needs: whether
// the product is a bookable service, how long one appointment takes, and
// whether it is still sold. Catalog CRUD lives elsewhere.
type Product struct {
	ID              string `db:"id" json:"id"`
	VendorID        string `db:"vendor_id" json:"vendor_id"`
	Name            string `db:"name" json:"name"`
	IsService       bool   `db:"is_service" json:"is_service"`
	DurationMinutes *int   `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Active          bool   `db:"active" json:"active"`
}
