package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marketloop/booking-api/internal/models"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

type holdStore interface {
	FindByID(ctx context.Context, id string) (*models.Hold, error)
	FindActiveByCartAndProduct(ctx context.Context, cartID, productID string) (*models.Hold, error)
	ReleaseExpired(ctx context.Context, now time.Time) (int, error)
}

// SelectSlotRequest pins a slot for a cart line ahead of checkout.
type SelectSlotRequest struct {
	CartID    string `json:"cart_id" validate:"required"`
	VendorID  string `json:"vendor_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
}

// HoldService manages cart-side slot holds: selection, replacement, release,
// and the background expiry sweep.
type HoldService struct {
	holds     holdStore
	products  productReader
	reserver  slotReserver
	ttl       time.Duration
	sweep     time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHoldService creates a service instance. ttl bounds how long a selected
// slot stays claimed without checkout; sweep is the reclaim interval.
func NewHoldService(
	holds holdStore,
	products productReader,
	reserver slotReserver,
	ttl, sweep time.Duration,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *HoldService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if sweep <= 0 {
		sweep = time.Minute
	}
	return &HoldService{
		holds:     holds,
		products:  products,
		reserver:  reserver,
		ttl:       ttl,
		sweep:     sweep,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// SelectSlot claims a slot for a cart line. Re-selecting the same slot
// refreshes nothing and returns the existing hold; selecting a different slot
// claims the new one first and only then releases the previous hold, so the
// customer never loses both.
func (s *HoldService) SelectSlot(ctx context.Context, req SelectSlotRequest) (*models.Hold, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot selection")
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

	prev, err := s.holds.FindActiveByCartAndProduct(ctx, req.CartID, req.ProductID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up existing hold")
	}
	if prev != nil && !prev.Expired(time.Now().UTC()) &&
		prev.BookingDate.Equal(date) && prev.StartMinute == startMinute {
		return prev, nil
	}

	cartID := req.CartID
	hold, err := s.reserver.TryReserve(ctx, ReserveRequest{
		VendorID:    req.VendorID,
		ProductID:   req.ProductID,
		CartID:      &cartID,
		Date:        date,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		TTL:         s.ttl,
	})
	if err != nil {
		return nil, err
	}

	if prev != nil {
		if relErr := s.reserver.Release(ctx, prev.ID); relErr != nil {
			s.logger.Warn("failed to release replaced hold",
				zap.String("hold_id", prev.ID), zap.Error(relErr))
		}
	}
	return hold, nil
}

// Get returns one hold.
func (s *HoldService) Get(ctx context.Context, id string) (*models.Hold, error) {
	hold, err := s.holds.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hold not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hold")
	}
	return hold, nil
}

// Release frees a hold's slot claim, e.g. when a cart line is removed.
// Releasing a hold that is already consumed or released is a no-op.
func (s *HoldService) Release(ctx context.Context, id string) error {
	return s.reserver.Release(ctx, id)
}

// SweepExpired releases every active hold whose TTL has lapsed and returns
// how many were reclaimed.
func (s *HoldService) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.holds.ReleaseExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sweep expired holds")
	}
	if n > 0 {
		s.metrics.AddExpiredHolds(n)
		s.logger.Info("expired holds reclaimed", zap.Int("count", n))
	}
	return n, nil
}

// StartSweeper runs the expiry sweep on a ticker until ctx is cancelled.
func (s *HoldService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepExpired(ctx); err != nil {
					s.logger.Error("hold sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

