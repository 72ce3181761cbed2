package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marketloop/booking-api/internal/models"
	"github.com/marketloop/booking-api/internal/repository"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
	"github.com/marketloop/booking-api/pkg/keylock"
)

type ledgerStore interface {
	CountClaimsAt(ctx context.Context, vendorID string, date time.Time, slotMinute int, excludeCart *string, now time.Time) (int, error)
	ClaimSlot(ctx context.Context, params repository.ClaimParams) (*models.Hold, error)
	ReleaseHold(ctx context.Context, holdID string) error
}

type windowReader interface {
	ListByVendorAndDay(ctx context.Context, vendorID string, dayOfWeek int) ([]models.AvailabilityWindow, error)
}

type scheduleCache interface {
	Invalidate(ctx context.Context, keys ...string)
}

// ReserveRequest describes one slot reservation attempt.
type ReserveRequest struct {
	VendorID    string
	ProductID   string
	CartID      *string
	Date        time.Time
	StartMinute int
	EndMinute   int
	TTL         time.Duration
}

// CapacityService is the capacity ledger: the single authority on how many
// units remain at a slot and the only path that may claim one. Reservation
// attempts on the same (vendor, date, slot) key serialize through an
// in-process keyed lock around the storage claim, which itself locks the
// vendor's window rows; attempts on different keys never block each other.
type CapacityService struct {
	ledger  ledgerStore
	windows windowReader
	cache   scheduleCache
	locks   *keylock.KeyLock
	wait    time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCapacityService wires the ledger.
func NewCapacityService(ledger ledgerStore, windows windowReader, cache scheduleCache, wait time.Duration, metrics *MetricsService, logger *zap.Logger) *CapacityService {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityService{
		ledger:  ledger,
		windows: windows,
		cache:   cache,
		locks:   keylock.New(),
		wait:    wait,
		metrics: metrics,
		logger:  logger,
	}
}

// RemainingCapacity reports the units left at a slot: the summed
// employee_count of windows covering the slot minus claims covering its
// start instant. It is a display read and may trail a racing reservation;
// the authoritative decision is always made inside TryReserve.
func (s *CapacityService) RemainingCapacity(ctx context.Context, vendorID string, date time.Time, slotMinute int, excludeCart *string) (int, error) {
	date = dateOnly(date)
	windows, err := s.windows.ListByVendorAndDay(ctx, vendorID, int(date.Weekday()))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	if len(windows) == 0 {
		return 0, appErrors.ErrVendorClosed
	}

	capacity := 0
	for _, w := range windows {
		if w.StartMinute <= slotMinute && slotMinute < w.EndMinute {
			capacity += w.EmployeeCount
		}
	}
	if capacity == 0 {
		return 0, nil
	}

	claims, err := s.ledger.CountClaimsAt(ctx, vendorID, date, slotMinute, excludeCart, time.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count claims")
	}
	remaining := capacity - claims
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// TryReserve atomically claims one unit of capacity for the slot and returns
// the hold carrying the claim. For N concurrent attempts on a key with
// remaining capacity C, exactly min(N, C) succeed and the rest fail with
// SlotFull. An attempt that cannot take the key's lock within the configured
// wait fails with Busy instead of queueing indefinitely. A failed attempt
// changes nothing.
func (s *CapacityService) TryReserve(ctx context.Context, req ReserveRequest) (*models.Hold, error) {
	if req.EndMinute <= req.StartMinute {
		return nil, appErrors.ErrInvalidInterval
	}
	req.Date = dateOnly(req.Date)

	key := reserveKey(req.VendorID, req.Date, req.StartMinute)
	release, err := s.locks.Acquire(ctx, key, s.wait)
	if err != nil {
		if errors.Is(err, keylock.ErrTimeout) {
			s.observeReservation("busy")
			return nil, appErrors.ErrBusy
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "reservation aborted")
	}
	defer release()

	hold, err := s.ledger.ClaimSlot(ctx, repository.ClaimParams{
		VendorID:    req.VendorID,
		ProductID:   req.ProductID,
		CartID:      req.CartID,
		Date:        req.Date,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
		ExpiresAt:   time.Now().UTC().Add(req.TTL),
	})
	if err != nil {
		switch {
		case appErrors.Is(err, appErrors.ErrVendorClosed):
			s.observeReservation("vendor_closed")
		case appErrors.Is(err, appErrors.ErrSlotFull):
			s.observeReservation("slot_full")
		default:
			s.observeReservation("error")
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to claim slot")
		}
		return nil, err
	}

	s.observeReservation("reserved")
	s.invalidateDay(ctx, req.VendorID, req.Date)
	s.logger.Debug("slot reserved",
		zap.String("vendor_id", req.VendorID),
		zap.String("hold_id", hold.ID),
		zap.Int("start_minute", req.StartMinute),
	)
	return hold, nil
}

// Release frees a hold's claim. Releasing an already released or consumed
// hold is a no-op.
func (s *CapacityService) Release(ctx context.Context, holdID string) error {
	if err := s.ledger.ReleaseHold(ctx, holdID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release hold")
	}
	return nil
}

// invalidateDay drops the cached schedule for the day a claim just changed.
func (s *CapacityService) invalidateDay(ctx context.Context, vendorID string, date time.Time) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, repository.DayScheduleKey(vendorID, date.Format("2006-01-02")))
	}
}

func (s *CapacityService) observeReservation(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordReservation(outcome)
	}
}

func reserveKey(vendorID string, date time.Time, slotMinute int) string {
	return fmt.Sprintf("%s:%s:%d", vendorID, date.Format("2006-01-02"), slotMinute)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
