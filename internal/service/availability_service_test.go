package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/booking-api/internal/models"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

type mockWindowStore struct {
	windows map[string]models.AvailabilityWindow
	nextID  int
	err     error
}

func newMockWindowStore() *mockWindowStore {
	return &mockWindowStore{windows: make(map[string]models.AvailabilityWindow)}
}

func (m *mockWindowStore) ListByVendor(ctx context.Context, vendorID string) ([]models.AvailabilityWindow, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.AvailabilityWindow, 0)
	for _, w := range m.windows {
		if w.VendorID == vendorID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockWindowStore) FindByID(ctx context.Context, id string) (*models.AvailabilityWindow, error) {
	if w, ok := m.windows[id]; ok {
		copied := w
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWindowStore) ListByVendorAndDay(ctx context.Context, vendorID string, dayOfWeek int) ([]models.AvailabilityWindow, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.AvailabilityWindow, 0)
	for _, w := range m.windows {
		if w.VendorID == vendorID && w.DayOfWeek == dayOfWeek {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockWindowStore) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	m.nextID++
	if window.ID == "" {
		window.ID = "window-" + time.Now().Format("150405") + "-" + string(rune('a'+m.nextID))
	}
	m.windows[window.ID] = *window
	return nil
}

func (m *mockWindowStore) Update(ctx context.Context, window *models.AvailabilityWindow) error {
	if _, ok := m.windows[window.ID]; !ok {
		return sql.ErrNoRows
	}
	m.windows[window.ID] = *window
	return nil
}

func (m *mockWindowStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.windows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.windows, id)
	return nil
}

type mockCapacityReader struct {
	remaining map[int]int
	err       error
}

func (m *mockCapacityReader) RemainingCapacity(ctx context.Context, vendorID string, date time.Time, slotMinute int, excludeCart *string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.remaining[slotMinute], nil
}

type mockDayCache struct {
	entries map[string][]byte
	gets    int
	sets    int
}

func newMockDayCache() *mockDayCache {
	return &mockDayCache{entries: make(map[string][]byte)}
}

func (m *mockDayCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockDayCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func windowReq() WindowRequest {
	return WindowRequest{
		VendorID:      "vendor-1",
		DayOfWeek:     1,
		StartMinute:   540,
		EndMinute:     660,
		SlotDuration:  30,
		EmployeeCount: 2,
	}
}

func TestAvailabilityServiceWindows(t *testing.T) {
	t.Run("create and fetch", func(t *testing.T) {
		store := newMockWindowStore()
		svc := NewAvailabilityService(store, &mockCapacityReader{}, nil, 0, nil, nil)

		window, err := svc.CreateWindow(context.Background(), windowReq())
		require.NoError(t, err)
		assert.NotEmpty(t, window.ID)

		found, err := svc.GetWindow(context.Background(), window.ID)
		require.NoError(t, err)
		assert.Equal(t, 540, found.StartMinute)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		svc := NewAvailabilityService(newMockWindowStore(), &mockCapacityReader{}, nil, 0, nil, nil)

		req := windowReq()
		req.StartMinute = 660
		req.EndMinute = 540
		_, err := svc.CreateWindow(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidInterval))
	})

	t.Run("rejects out-of-range weekday", func(t *testing.T) {
		svc := NewAvailabilityService(newMockWindowStore(), &mockCapacityReader{}, nil, 0, nil, nil)

		req := windowReq()
		req.DayOfWeek = 7
		_, err := svc.CreateWindow(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	})

	t.Run("rejects zero capacity or duration", func(t *testing.T) {
		svc := NewAvailabilityService(newMockWindowStore(), &mockCapacityReader{}, nil, 0, nil, nil)

		req := windowReq()
		req.EmployeeCount = 0
		_, err := svc.CreateWindow(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

		req = windowReq()
		req.SlotDuration = 0
		_, err = svc.CreateWindow(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	})

	t.Run("update rejects vendor mismatch", func(t *testing.T) {
		store := newMockWindowStore()
		svc := NewAvailabilityService(store, &mockCapacityReader{}, nil, 0, nil, nil)
		window, err := svc.CreateWindow(context.Background(), windowReq())
		require.NoError(t, err)

		req := windowReq()
		req.VendorID = "vendor-2"
		_, err = svc.UpdateWindow(context.Background(), window.ID, req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	})

	t.Run("delete missing window", func(t *testing.T) {
		svc := NewAvailabilityService(newMockWindowStore(), &mockCapacityReader{}, nil, 0, nil, nil)
		err := svc.DeleteWindow(context.Background(), "missing")
		assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	})
}

func TestAvailabilityServiceDaySchedule(t *testing.T) {
	monday, _ := time.Parse("2006-01-02", "2026-03-02")

	seedStore := func() *mockWindowStore {
		store := newMockWindowStore()
		store.windows["w1"] = models.AvailabilityWindow{
			ID: "w1", VendorID: "vendor-1", DayOfWeek: 1,
			StartMinute: 540, EndMinute: 600, SlotDuration: 30, EmployeeCount: 2,
		}
		return store
	}

	t.Run("lists slots with remaining units", func(t *testing.T) {
		capacity := &mockCapacityReader{remaining: map[int]int{540: 2, 570: 1}}
		svc := NewAvailabilityService(seedStore(), capacity, nil, 0, nil, nil)

		schedule, err := svc.DaySchedule(context.Background(), "vendor-1", monday)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-02", schedule.Date)
		require.Len(t, schedule.Slots, 2)
		assert.Equal(t, models.SlotAvailability{Slot: "09:00 AM", Remaining: 2}, schedule.Slots[0])
		assert.Equal(t, models.SlotAvailability{Slot: "09:30 AM", Remaining: 1}, schedule.Slots[1])
	})

	t.Run("vendor closed on a day without windows", func(t *testing.T) {
		svc := NewAvailabilityService(seedStore(), &mockCapacityReader{}, nil, 0, nil, nil)

		sunday := monday.AddDate(0, 0, -1)
		_, err := svc.DaySchedule(context.Background(), "vendor-1", sunday)
		assert.True(t, appErrors.Is(err, appErrors.ErrVendorClosed))
	})

	t.Run("merges overlapping windows into one slot union", func(t *testing.T) {
		store := seedStore()
		store.windows["w2"] = models.AvailabilityWindow{
			ID: "w2", VendorID: "vendor-1", DayOfWeek: 1,
			StartMinute: 570, EndMinute: 630, SlotDuration: 30, EmployeeCount: 1,
		}
		capacity := &mockCapacityReader{remaining: map[int]int{540: 2, 570: 3, 600: 1}}
		svc := NewAvailabilityService(store, capacity, nil, 0, nil, nil)

		schedule, err := svc.DaySchedule(context.Background(), "vendor-1", monday)
		require.NoError(t, err)
		require.Len(t, schedule.Slots, 3)
		assert.Equal(t, "09:00 AM", schedule.Slots[0].Slot)
		assert.Equal(t, "09:30 AM", schedule.Slots[1].Slot)
		assert.Equal(t, "10:00 AM", schedule.Slots[2].Slot)
	})

	t.Run("second read comes from cache", func(t *testing.T) {
		capacity := &mockCapacityReader{remaining: map[int]int{540: 2, 570: 1}}
		cache := newMockDayCache()
		svc := NewAvailabilityService(seedStore(), capacity, cache, time.Minute, nil, nil)

		first, err := svc.DaySchedule(context.Background(), "vendor-1", monday)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.sets)

		capacity.remaining[540] = 0
		second, err := svc.DaySchedule(context.Background(), "vendor-1", monday)
		require.NoError(t, err)
		assert.Equal(t, first.Slots, second.Slots)
		assert.Equal(t, 2, cache.gets)
	})
}
