package models

import "time"

// ReportFormat selects the rendered output of a day-sheet report.
type ReportFormat string

const (
	ReportCSV ReportFormat = "csv"
	ReportPDF ReportFormat = "pdf"
)

// Valid reports whether f is a supported format.
func (f ReportFormat) Valid() bool {
	return f == ReportCSV || f == ReportPDF
}

// ReportStatus tracks a report job through the background queue.
type ReportStatus string

const (
	ReportQueued  ReportStatus = "queued"
	ReportRunning ReportStatus = "running"
	ReportReady   ReportStatus = "ready"
	ReportFailed  ReportStatus = "failed"
)

// ReportJob is one requested day-sheet export. Jobs are generated in the
// background; DownloadToken is set once the file is ready.
type ReportJob struct {
	ID            string       `json:"id"`
	VendorID      string       `json:"vendor_id"`
	Date          time.Time    `json:"date"`
	Format        ReportFormat `json:"format"`
	Status        ReportStatus `json:"status"`
	FileName      string       `json:"-"`
	DownloadToken string       `json:"download_token,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	Error         string       `json:"error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}
