package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marketloop/booking-api/internal/models"
	"github.com/marketloop/booking-api/internal/repository"
	"github.com/marketloop/booking-api/internal/timeslot"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

type windowStore interface {
	ListByVendor(ctx context.Context, vendorID string) ([]models.AvailabilityWindow, error)
	FindByID(ctx context.Context, id string) (*models.AvailabilityWindow, error)
	ListByVendorAndDay(ctx context.Context, vendorID string, dayOfWeek int) ([]models.AvailabilityWindow, error)
	Create(ctx context.Context, window *models.AvailabilityWindow) error
	Update(ctx context.Context, window *models.AvailabilityWindow) error
	Delete(ctx context.Context, id string) error
}

type capacityReader interface {
	RemainingCapacity(ctx context.Context, vendorID string, date time.Time, slotMinute int, excludeCart *string) (int, error)
}

type dayScheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// WindowRequest carries the mutable fields of an availability window.
// Minutes are measured from midnight.
type WindowRequest struct {
	VendorID      string `json:"vendor_id" validate:"required"`
	DayOfWeek     int    `json:"day_of_week" validate:"min=0,max=6"`
	StartMinute   int    `json:"start_minute" validate:"min=0,max=1439"`
	EndMinute     int    `json:"end_minute" validate:"min=1,max=1440"`
	SlotDuration  int    `json:"slot_duration_minutes" validate:"required,min=1"`
	EmployeeCount int    `json:"employee_count" validate:"required,min=1"`
}

// AvailabilityService manages the weekly window templates and produces the
// bookable-slot listing for a day.
type AvailabilityService struct {
	windows   windowStore
	capacity  capacityReader
	cache     dayScheduleCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService creates a service instance. cache may be nil, the
// schedule is then computed on every read.
func NewAvailabilityService(
	windows windowStore,
	capacity capacityReader,
	cache dayScheduleCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &AvailabilityService{
		windows:   windows,
		capacity:  capacity,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// ListWindows returns a vendor's availability windows ordered by day and
// start.
func (s *AvailabilityService) ListWindows(ctx context.Context, vendorID string) ([]models.AvailabilityWindow, error) {
	windows, err := s.windows.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability windows")
	}
	return windows, nil
}

// GetWindow returns one window.
func (s *AvailabilityService) GetWindow(ctx context.Context, id string) (*models.AvailabilityWindow, error) {
	window, err := s.windows.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability window")
	}
	return window, nil
}

// CreateWindow validates and stores a new window.
func (s *AvailabilityService) CreateWindow(ctx context.Context, req WindowRequest) (*models.AvailabilityWindow, error) {
	if err := s.validateWindow(req); err != nil {
		return nil, err
	}
	window := &models.AvailabilityWindow{
		VendorID:      req.VendorID,
		DayOfWeek:     req.DayOfWeek,
		StartMinute:   req.StartMinute,
		EndMinute:     req.EndMinute,
		SlotDuration:  req.SlotDuration,
		EmployeeCount: req.EmployeeCount,
	}
	if err := s.windows.Create(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability window")
	}
	s.logger.Info("availability window created",
		zap.String("window_id", window.ID),
		zap.String("vendor_id", window.VendorID),
		zap.Int("day_of_week", window.DayOfWeek),
	)
	return window, nil
}

// UpdateWindow replaces a window's schedule fields. Existing bookings made
// under the old shape are not revisited.
func (s *AvailabilityService) UpdateWindow(ctx context.Context, id string, req WindowRequest) (*models.AvailabilityWindow, error) {
	if err := s.validateWindow(req); err != nil {
		return nil, err
	}
	window, err := s.GetWindow(ctx, id)
	if err != nil {
		return nil, err
	}
	if window.VendorID != req.VendorID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "window does not belong to this vendor")
	}
	window.DayOfWeek = req.DayOfWeek
	window.StartMinute = req.StartMinute
	window.EndMinute = req.EndMinute
	window.SlotDuration = req.SlotDuration
	window.EmployeeCount = req.EmployeeCount
	if err := s.windows.Update(ctx, window); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability window")
	}
	return window, nil
}

// DeleteWindow removes a window. Future bookings made under it survive.
func (s *AvailabilityService) DeleteWindow(ctx context.Context, id string) error {
	if err := s.windows.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability window")
	}
	return nil
}

// DaySchedule lists a vendor's bookable slots on a date with remaining units
// per slot. The listing is a display read served from a short-TTL cache;
// reservation itself never consults it.
func (s *AvailabilityService) DaySchedule(ctx context.Context, vendorID string, date time.Time) (*models.DaySchedule, error) {
	date = dateOnly(date)
	key := repository.DayScheduleKey(vendorID, date.Format("2006-01-02"))

	if s.cache != nil {
		var cached models.DaySchedule
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("day schedule cache read failed", zap.Error(err))
		}
	}

	windows, err := s.windows.ListByVendorAndDay(ctx, vendorID, int(date.Weekday()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	if len(windows) == 0 {
		return nil, appErrors.ErrVendorClosed
	}

	schedule := &models.DaySchedule{
		VendorID: vendorID,
		Date:     date.Format("2006-01-02"),
		Slots:    make([]models.SlotAvailability, 0),
	}
	for _, minute := range slotUnion(windows) {
		remaining, err := s.capacity.RemainingCapacity(ctx, vendorID, date, minute, nil)
		if err != nil {
			return nil, err
		}
		schedule.Slots = append(schedule.Slots, models.SlotAvailability{
			Slot:      timeslot.FormatClock(minute),
			Remaining: remaining,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, schedule, s.cacheTTL); err != nil {
			s.logger.Warn("day schedule cache write failed", zap.Error(err))
		}
	}
	return schedule, nil
}

func (s *AvailabilityService) validateWindow(req WindowRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window")
	}
	if req.EndMinute <= req.StartMinute {
		return appErrors.ErrInvalidInterval
	}
	return nil
}

// slotUnion merges the slot starts of all windows on a day into one ordered,
// deduplicated list.
func slotUnion(windows []models.AvailabilityWindow) []int {
	seen := make(map[int]struct{})
	var minutes []int
	for _, w := range windows {
		for _, m := range timeslot.Slots(w.StartMinute, w.EndMinute, w.SlotDuration) {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				minutes = append(minutes, m)
			}
		}
	}
	sort.Ints(minutes)
	return minutes
}
