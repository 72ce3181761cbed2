package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/booking-api/internal/models"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

type mockHoldRepo struct {
	holds        map[string]models.Hold
	sweepCount   int
	sweepErr     error
	sweepedUntil time.Time
}

func (m *mockHoldRepo) FindByID(ctx context.Context, id string) (*models.Hold, error) {
	if h, ok := m.holds[id]; ok {
		copied := h
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHoldRepo) FindActiveByCartAndProduct(ctx context.Context, cartID, productID string) (*models.Hold, error) {
	for _, h := range m.holds {
		if h.Status == models.HoldActive && h.CartID != nil && *h.CartID == cartID && h.ProductID == productID {
			copied := h
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockHoldRepo) ReleaseExpired(ctx context.Context, now time.Time) (int, error) {
	if m.sweepErr != nil {
		return 0, m.sweepErr
	}
	m.sweepedUntil = now
	return m.sweepCount, nil
}

func holdFixtures() (*mockHoldRepo, *mockReserver, *HoldService) {
	repo := &mockHoldRepo{holds: make(map[string]models.Hold)}
	products := &mockProductRepo{products: map[string]models.Product{
		"product-1": {ID: "product-1", VendorID: "vendor-1", Name: "Haircut", IsService: true, DurationMinutes: intPtr(30), Active: true},
	}}
	reserver := &mockReserver{}
	svc := NewHoldService(repo, products, reserver, 15*time.Minute, time.Minute, nil, nil, nil)
	return repo, reserver, svc
}

func selectReq() SelectSlotRequest {
	return SelectSlotRequest{
		CartID:    "cart-1",
		VendorID:  "vendor-1",
		ProductID: "product-1",
		Date:      "2026-03-02",
		StartTime: "09:00 AM",
	}
}

func TestHoldServiceSelectSlot(t *testing.T) {
	t.Run("claims the slot for the cart line", func(t *testing.T) {
		_, reserver, svc := holdFixtures()

		hold, err := svc.SelectSlot(context.Background(), selectReq())
		require.NoError(t, err)
		assert.Equal(t, models.HoldActive, hold.Status)
		assert.Equal(t, 540, hold.StartMinute)
		assert.Equal(t, 570, hold.EndMinute)
		require.NotNil(t, hold.CartID)
		assert.Equal(t, "cart-1", *hold.CartID)
		require.Len(t, reserver.reserved, 1)
		assert.Equal(t, 15*time.Minute, reserver.reserved[0].TTL)
	})

	t.Run("re-selecting the same slot returns the existing hold", func(t *testing.T) {
		repo, reserver, svc := holdFixtures()
		date, _ := time.Parse("2006-01-02", "2026-03-02")
		cart := "cart-1"
		repo.holds["hold-existing"] = models.Hold{
			ID: "hold-existing", VendorID: "vendor-1", ProductID: "product-1",
			CartID: &cart, BookingDate: date, StartMinute: 540, EndMinute: 570,
			Status: models.HoldActive, ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
		}

		hold, err := svc.SelectSlot(context.Background(), selectReq())
		require.NoError(t, err)
		assert.Equal(t, "hold-existing", hold.ID)
		assert.Empty(t, reserver.reserved)
	})

	t.Run("selecting a different slot replaces the previous hold", func(t *testing.T) {
		repo, reserver, svc := holdFixtures()
		date, _ := time.Parse("2006-01-02", "2026-03-02")
		cart := "cart-1"
		repo.holds["hold-existing"] = models.Hold{
			ID: "hold-existing", VendorID: "vendor-1", ProductID: "product-1",
			CartID: &cart, BookingDate: date, StartMinute: 540, EndMinute: 570,
			Status: models.HoldActive, ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
		}

		req := selectReq()
		req.StartTime = "10:00 AM"
		hold, err := svc.SelectSlot(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 600, hold.StartMinute)
		require.Len(t, reserver.reserved, 1)
		assert.Equal(t, []string{"hold-existing"}, reserver.released)
	})

	t.Run("expired previous hold does not satisfy re-selection", func(t *testing.T) {
		repo, reserver, svc := holdFixtures()
		date, _ := time.Parse("2006-01-02", "2026-03-02")
		cart := "cart-1"
		repo.holds["hold-stale"] = models.Hold{
			ID: "hold-stale", VendorID: "vendor-1", ProductID: "product-1",
			CartID: &cart, BookingDate: date, StartMinute: 540, EndMinute: 570,
			Status: models.HoldActive, ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}

		hold, err := svc.SelectSlot(context.Background(), selectReq())
		require.NoError(t, err)
		assert.NotEqual(t, "hold-stale", hold.ID)
		require.Len(t, reserver.reserved, 1)
	})

	t.Run("full slot keeps the previous hold", func(t *testing.T) {
		repo, reserver, svc := holdFixtures()
		date, _ := time.Parse("2006-01-02", "2026-03-02")
		cart := "cart-1"
		repo.holds["hold-existing"] = models.Hold{
			ID: "hold-existing", VendorID: "vendor-1", ProductID: "product-1",
			CartID: &cart, BookingDate: date, StartMinute: 540, EndMinute: 570,
			Status: models.HoldActive, ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
		}
		reserver.err = appErrors.ErrSlotFull

		req := selectReq()
		req.StartTime = "10:00 AM"
		_, err := svc.SelectSlot(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrSlotFull))
		assert.Empty(t, reserver.released)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, _, svc := holdFixtures()

		req := selectReq()
		req.ProductID = "missing"
		_, err := svc.SelectSlot(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	})
}

func TestHoldServiceSweep(t *testing.T) {
	t.Run("reports reclaimed holds", func(t *testing.T) {
		repo, _, svc := holdFixtures()
		repo.sweepCount = 4

		n, err := svc.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.False(t, repo.sweepedUntil.IsZero())
	})

	t.Run("wraps storage errors", func(t *testing.T) {
		repo, _, svc := holdFixtures()
		repo.sweepErr = sql.ErrConnDone

		_, err := svc.SweepExpired(context.Background())
		assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	})
}

func TestHoldServiceRelease(t *testing.T) {
	_, reserver, svc := holdFixtures()

	require.NoError(t, svc.Release(context.Background(), "hold-7"))
	assert.Equal(t, []string{"hold-7"}, reserver.released)
}
