package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketloop/booking-api/internal/models"
	"github.com/marketloop/booking-api/internal/timeslot"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
	"github.com/marketloop/booking-api/pkg/export"
	"github.com/marketloop/booking-api/pkg/jobs"
	"github.com/marketloop/booking-api/pkg/storage"
)

type daySheetSource interface {
	ListOverlapping(ctx context.Context, vendorID string, date time.Time, startMinute, endMinute int) ([]models.Booking, error)
}

// DaySheetRequest asks for a rendered roster of one vendor day.
type DaySheetRequest struct {
	VendorID string `json:"vendor_id" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Format   string `json:"format" validate:"required"`
}

// ReportService renders day sheets in the background. Jobs are tracked in
// memory only; a restart forgets queued work, which is acceptable because
// callers simply re-request the sheet.
type ReportService struct {
	bookings  daySheetSource
	products  productReader
	employees employeeLister
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger

	mu   sync.Mutex
	jobs map[string]*models.ReportJob
}

func NewReportService(
	bookings daySheetSource,
	products productReader,
	employees employeeLister,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	workers int,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &ReportService{
		bookings:  bookings,
		products:  products,
		employees: employees,
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		jobs:      make(map[string]*models.ReportJob),
	}
	s.queue = jobs.NewQueue("day-sheet", s.process, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})

	return s
}

// Start launches the queue workers. Stop drains them.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Request enqueues a day-sheet job and returns its handle immediately.
func (s *ReportService) Request(ctx context.Context, req DaySheetRequest) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}

	format := models.ReportFormat(req.Format)
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", req.Format))
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}

	job := &models.ReportJob{
		ID:        uuid.NewString(),
		VendorID:  req.VendorID,
		Date:      date,
		Format:    format,
		Status:    models.ReportQueued,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "day_sheet", Payload: job.ID}); err != nil {
		s.mu.Lock()
		delete(s.jobs, job.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}

	return s.snapshot(job.ID), nil
}

// Get returns the current state of a report job.
func (s *ReportService) Get(ctx context.Context, jobID string) (*models.ReportJob, error) {
	job := s.snapshot(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return job, nil
}

// Download validates a signed token and resolves the file it references.
// It returns the absolute path plus a user-facing filename.
func (s *ReportService) Download(token string) (path, name string, err error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid or expired download token")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file not found")
	}
	_ = file.Close()

	return s.store.Path(relPath), filepath.Base(relPath), nil
}

func (s *ReportService) process(ctx context.Context, qj jobs.Job) error {
	jobID, _ := qj.Payload.(string)
	if jobID == "" {
		jobID = qj.ID
	}

	s.setStatus(jobID, models.ReportRunning, "")

	job := s.snapshot(jobID)
	if job == nil {
		return fmt.Errorf("report job %s missing from registry", jobID)
	}

	data, err := s.render(ctx, job)
	if err != nil {
		s.setStatus(jobID, models.ReportFailed, err.Error())
		return err
	}

	fileName := fmt.Sprintf("day-sheets/%s/%s-%s.%s", job.VendorID, job.Date.Format("2006-01-02"), job.ID, job.Format)
	if _, err := s.store.Save(fileName, data); err != nil {
		s.setStatus(jobID, models.ReportFailed, err.Error())
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, fileName)
	if err != nil {
		s.setStatus(jobID, models.ReportFailed, err.Error())
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if stored, ok := s.jobs[jobID]; ok {
		stored.Status = models.ReportReady
		stored.Error = ""
		stored.FileName = fileName
		stored.DownloadToken = token
		stored.ExpiresAt = &expiresAt
		stored.CompletedAt = &now
	}
	s.mu.Unlock()

	s.logger.Info("day sheet ready",
		zap.String("job_id", jobID),
		zap.String("vendor_id", job.VendorID),
		zap.String("file", fileName),
	)

	return nil
}

func (s *ReportService) render(ctx context.Context, job *models.ReportJob) ([]byte, error) {
	bookings, err := s.bookings.ListOverlapping(ctx, job.VendorID, job.Date, 0, timeslot.MinutesPerDay)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	staff, err := s.employees.ListByVendor(ctx, job.VendorID, false)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	staffNames := make(map[string]string, len(staff))
	for _, e := range staff {
		staffNames[e.ID] = e.Name
	}

	dataset := export.Dataset{
		Headers: []string{"Time", "Service", "Staff", "Customer", "Status"},
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartMinute < bookings[j].StartMinute
	})

	productNames := make(map[string]string)
	for _, b := range bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Time":     fmt.Sprintf("%s - %s", timeslot.FormatClock(b.StartMinute), timeslot.FormatClock(b.EndMinute)),
			"Service":  s.productName(ctx, productNames, b.ProductID),
			"Staff":    lookupOr(staffNames, b.EmployeeID, "Unassigned"),
			"Customer": stringOr(b.CustomerName, ""),
			"Status":   string(b.Status),
		})
	}

	title := fmt.Sprintf("Day Sheet %s", job.Date.Format("2006-01-02"))
	switch job.Format {
	case models.ReportPDF:
		return export.NewPDFExporter().Render(dataset, title)
	default:
		return export.NewCSVExporter().Render(dataset)
	}
}

func (s *ReportService) productName(ctx context.Context, cache map[string]string, productID string) string {
	if name, ok := cache[productID]; ok {
		return name
	}
	name := productID
	if product, err := s.products.FindByID(ctx, productID); err == nil {
		name = product.Name
	}
	cache[productID] = name
	return name
}

func (s *ReportService) snapshot(jobID string) *models.ReportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ReportService) setStatus(jobID string, status models.ReportStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = status
		job.Error = errMsg
	}
}

func lookupOr(names map[string]string, id *string, fallback string) string {
	if id == nil {
		return fallback
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return fallback
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
