package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marketloop/booking-api/internal/models"
	"github.com/marketloop/booking-api/internal/timeslot"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

type bookingStore interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByOrderLine(ctx context.Context, orderLineID string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	ListOverlapping(ctx context.Context, vendorID string, date time.Time, startMinute, endMinute int) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type productReader interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

type employeeLister interface {
	ListByVendor(ctx context.Context, vendorID string, activeOnly bool) ([]models.Employee, error)
}

type slotReserver interface {
	TryReserve(ctx context.Context, req ReserveRequest) (*models.Hold, error)
	Release(ctx context.Context, holdID string) error
}

type claimConverter interface {
	ConvertHold(ctx context.Context, holdID string, booking *models.Booking) error
	ApplyReschedule(ctx context.Context, holdID string, booking *models.Booking) error
}

type holdReader interface {
	FindByID(ctx context.Context, id string) (*models.Hold, error)
}

// conversionGrace is the TTL on the internal hold bridging a direct
// reservation to its booking row. It only needs to outlive the conversion
// call; the sweeper reclaims it if the process dies in between.
const conversionGrace = 2 * time.Minute

// CreateBookingRequest describes a direct scheduling or order-triggered
// booking. StartTime takes a slot label ("09:00 AM" or "14:30"); the end is
// derived from the service duration.
type CreateBookingRequest struct {
	VendorID    string  `json:"vendor_id" validate:"required"`
	ProductID   string  `json:"product_id" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	StartTime   string  `json:"start_time" validate:"required"`
	OrderLineID *string `json:"order_line_id,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`

	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
}

// ConvertHoldRequest turns a cart hold into a confirmed booking at checkout.
// The customer snapshot is copied onto the booking; the hold already carries
// the slot, so no new capacity check runs.
type ConvertHoldRequest struct {
	OrderLineID string                 `json:"order_line_id" validate:"required"`
	EmployeeID  *string                `json:"employee_id,omitempty"`
	Customer    models.CustomerContact `json:"customer"`
}

// RescheduleRequest moves a booking to a new date and start time.
type RescheduleRequest struct {
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
}

// BookingService drives the booking lifecycle: creation through the capacity
// ledger, employee auto-assignment, and the status state machine.
type BookingService struct {
	bookings  bookingStore
	products  productReader
	employees employeeLister
	reserver  slotReserver
	converter claimConverter
	holds     holdReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService creates a service instance.
func NewBookingService(
	bookings bookingStore,
	products productReader,
	employees employeeLister,
	reserver slotReserver,
	converter claimConverter,
	holds holdReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:  bookings,
		products:  products,
		employees: employees,
		reserver:  reserver,
		converter: converter,
		holds:     holds,
		validator: validate,
		logger:    logger,
	}
}

// Create books a slot. Direct scheduling produces a pending booking; a
// request carrying an order line reference arrives after payment success and
// is confirmed immediately. The slot claim happens atomically inside the
// ledger, so an oversold slot is rejected with SlotFull before any row is
// written.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	date, startMinute, err := parseDateAndSlot(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}

	product, err := loadBookableService(ctx, s.products, req.ProductID, req.VendorID)
	if err != nil {
		return nil, err
	}
	endMinute := startMinute + *product.DurationMinutes
	if endMinute <= startMinute {
		return nil, appErrors.ErrInvalidInterval
	}

	hold, err := s.reserver.TryReserve(ctx, ReserveRequest{
		VendorID:    req.VendorID,
		ProductID:   req.ProductID,
		Date:        date,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		TTL:         conversionGrace,
	})
	if err != nil {
		return nil, err
	}

	employeeID := req.EmployeeID
	if employeeID == nil {
		employeeID, err = s.AutoAssignEmployee(ctx, req.VendorID, date, startMinute, endMinute, "")
		if err != nil {
			_ = s.reserver.Release(ctx, hold.ID)
			return nil, err
		}
	}

	status := models.BookingPending
	if req.OrderLineID != nil {
		status = models.BookingConfirmed
	}

	booking := &models.Booking{
		VendorID:      req.VendorID,
		ProductID:     req.ProductID,
		OrderLineID:   req.OrderLineID,
		EmployeeID:    employeeID,
		BookingDate:   date,
		StartMinute:   startMinute,
		EndMinute:     endMinute,
		Status:        status,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	}
	if err := s.converter.ConvertHold(ctx, hold.ID, booking); err != nil {
		_ = s.reserver.Release(ctx, hold.ID)
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("vendor_id", booking.VendorID),
		zap.String("status", string(booking.Status)),
	)
	return booking, nil
}

// ConvertHoldToBooking is the checkout path: the cart's hold already owns the
// slot claim, so the ledger consumes it and writes the confirmed booking in
// one transaction with no capacity re-check. The buyer can never lose a slot
// their own cart is holding. Converting the same order line twice returns the
// booking the first call produced.
func (s *BookingService) ConvertHoldToBooking(ctx context.Context, holdID string, req ConvertHoldRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conversion payload")
	}

	if existing, err := s.bookings.FindByOrderLine(ctx, req.OrderLineID); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check order line")
	}

	hold, err := s.holds.FindByID(ctx, holdID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hold not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hold")
	}
	if hold.Status != models.HoldActive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "hold is no longer active")
	}
	if hold.Expired(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrHoldExpired, "hold has expired, reselect the slot")
	}

	employeeID := req.EmployeeID
	if employeeID == nil {
		employeeID, err = s.AutoAssignEmployee(ctx, hold.VendorID, hold.BookingDate, hold.StartMinute, hold.EndMinute, "")
		if err != nil {
			return nil, err
		}
	}

	orderLineID := req.OrderLineID
	booking := &models.Booking{
		VendorID:      hold.VendorID,
		ProductID:     hold.ProductID,
		OrderLineID:   &orderLineID,
		EmployeeID:    employeeID,
		BookingDate:   hold.BookingDate,
		StartMinute:   hold.StartMinute,
		EndMinute:     hold.EndMinute,
		Status:        models.BookingConfirmed,
		CustomerName:  optString(req.Customer.Name),
		CustomerEmail: optString(req.Customer.Email),
		CustomerPhone: optString(req.Customer.Phone),
	}
	// On failure the hold stays with the cart; the sweeper reclaims it if
	// the checkout never retries.
	if err := s.converter.ConvertHold(ctx, holdID, booking); err != nil {
		return nil, err
	}

	s.logger.Info("hold converted to booking",
		zap.String("booking_id", booking.ID),
		zap.String("hold_id", holdID),
		zap.String("order_line_id", orderLineID),
	)
	return booking, nil
}

// GetByOrderLine resolves the booking an order line produced, if any.
func (s *BookingService) GetByOrderLine(ctx context.Context, orderLineID string) (*models.Booking, error) {
	booking, err := s.bookings.FindByOrderLine(ctx, orderLineID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no booking for this order line")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// AutoAssignEmployee returns the first active employee with no non-cancelled
// booking overlapping [startMinute, endMinute) on the date, or nil when all
// staff are busy. Candidates are scanned in creation order then id, a
// deliberately stable total order. excludeBookingID removes a booking being
// rescheduled from the busy computation.
func (s *BookingService) AutoAssignEmployee(ctx context.Context, vendorID string, date time.Time, startMinute, endMinute int, excludeBookingID string) (*string, error) {
	staff, err := s.employees.ListByVendor(ctx, vendorID, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	if len(staff) == 0 {
		return nil, nil
	}

	overlapping, err := s.bookings.ListOverlapping(ctx, vendorID, date, startMinute, endMinute)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overlapping bookings")
	}

	busy := make(map[string]struct{}, len(overlapping))
	for _, b := range overlapping {
		if b.ID == excludeBookingID || b.EmployeeID == nil {
			continue
		}
		if timeslot.Overlaps(b.StartMinute, b.EndMinute, startMinute, endMinute) {
			busy[*b.EmployeeID] = struct{}{}
		}
	}

	for _, emp := range staff {
		if _, taken := busy[emp.ID]; !taken {
			id := emp.ID
			return &id, nil
		}
	}
	return nil, nil
}

// Get returns one booking.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// List returns a vendor's bookings with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// UpdateStatus moves a booking through the state machine, rejecting illegal
// transitions.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, next models.BookingStatus) (*models.Booking, error) {
	if !next.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == next {
		return booking, nil
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			"cannot move booking from "+string(booking.Status)+" to "+string(next))
	}
	if err := s.bookings.UpdateStatus(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking status")
	}
	booking.Status = next
	return booking, nil
}

// Cancel moves a pending or confirmed booking to cancelled. The slot's
// capacity frees synchronously: cancelled bookings stop counting the moment
// the status lands.
func (s *BookingService) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, id, models.BookingCancelled)
}

// Complete marks a booking completed.
func (s *BookingService) Complete(ctx context.Context, id string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, id, models.BookingCompleted)
}

// Reschedule moves a booking to a new date/time. The new slot is reserved
// before anything about the booking changes; if the reservation or the swap
// fails, the booking keeps its previous date, times, employee and claim.
func (s *BookingService) Reschedule(ctx context.Context, id string, req RescheduleRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot reschedule a cancelled or completed booking")
	}

	date, startMinute, err := parseDateAndSlot(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}

	product, err := loadBookableService(ctx, s.products, booking.ProductID, booking.VendorID)
	if err != nil {
		return nil, err
	}
	endMinute := startMinute + *product.DurationMinutes

	hold, err := s.reserver.TryReserve(ctx, ReserveRequest{
		VendorID:    booking.VendorID,
		ProductID:   booking.ProductID,
		Date:        date,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		TTL:         conversionGrace,
	})
	if err != nil {
		return nil, err
	}

	employeeID, err := s.AutoAssignEmployee(ctx, booking.VendorID, date, startMinute, endMinute, booking.ID)
	if err != nil {
		_ = s.reserver.Release(ctx, hold.ID)
		return nil, err
	}

	updated := *booking
	updated.BookingDate = date
	updated.StartMinute = startMinute
	updated.EndMinute = endMinute
	updated.EmployeeID = employeeID
	if err := s.converter.ApplyReschedule(ctx, hold.ID, &updated); err != nil {
		_ = s.reserver.Release(ctx, hold.ID)
		return nil, err
	}

	s.logger.Info("booking rescheduled",
		zap.String("booking_id", booking.ID),
		zap.String("date", req.Date),
		zap.String("start_time", req.StartTime),
	)
	return &updated, nil
}

// loadBookableService fetches a product and checks it is an active service
// belonging to the vendor with a positive duration.
func loadBookableService(ctx context.Context, products productReader, productID, vendorID string) (*models.Product, error) {
	product, err := products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
	}
	if product.VendorID != vendorID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "product does not belong to this vendor")
	}
	if !product.IsService || product.DurationMinutes == nil || *product.DurationMinutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "product is not a bookable service")
	}
	if !product.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "product is no longer offered")
	}
	return product, nil
}

func parseDateAndSlot(dateStr, slotLabel string) (time.Time, int, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, 0, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	startMinute, err := timeslot.ParseClock(slotLabel)
	if err != nil {
		return time.Time{}, 0, appErrors.Clone(appErrors.ErrValidation, "invalid start time")
	}
	return date, startMinute, nil
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
