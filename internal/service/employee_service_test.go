package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/booking-api/internal/models"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
)

type mockEmployeeStore struct {
	employees map[string]models.Employee
	byEmail   map[string]string
	nextID    int
}

func newMockEmployeeStore() *mockEmployeeStore {
	return &mockEmployeeStore{
		employees: make(map[string]models.Employee),
		byEmail:   make(map[string]string),
	}
}

func (m *mockEmployeeStore) ListByVendor(ctx context.Context, vendorID string, activeOnly bool) ([]models.Employee, error) {
	out := make([]models.Employee, 0)
	for _, e := range m.employees {
		if e.VendorID == vendorID && (!activeOnly || e.Active) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEmployeeStore) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if e, ok := m.employees[id]; ok {
		copied := e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEmployeeStore) ExistsByEmail(ctx context.Context, vendorID, email, excludeID string) (bool, error) {
	if id, ok := m.byEmail[vendorID+"|"+email]; ok {
		return excludeID == "" || id != excludeID, nil
	}
	return false, nil
}

func (m *mockEmployeeStore) Create(ctx context.Context, employee *models.Employee) error {
	m.nextID++
	employee.ID = "emp-" + string(rune('0'+m.nextID))
	m.employees[employee.ID] = *employee
	if employee.Email != nil {
		m.byEmail[employee.VendorID+"|"+*employee.Email] = employee.ID
	}
	return nil
}

func (m *mockEmployeeStore) Update(ctx context.Context, employee *models.Employee) error {
	if _, ok := m.employees[employee.ID]; !ok {
		return sql.ErrNoRows
	}
	m.employees[employee.ID] = *employee
	return nil
}

func (m *mockEmployeeStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.employees[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.employees, id)
	return nil
}

func TestEmployeeServiceCreate(t *testing.T) {
	t.Run("defaults to active", func(t *testing.T) {
		svc := NewEmployeeService(newMockEmployeeStore(), nil, nil)

		emp, err := svc.Create(context.Background(), EmployeeRequest{VendorID: "vendor-1", Name: "Alice"})
		require.NoError(t, err)
		assert.True(t, emp.Active)
		assert.NotEmpty(t, emp.ID)
	})

	t.Run("rejects a duplicate email within the vendor", func(t *testing.T) {
		store := newMockEmployeeStore()
		svc := NewEmployeeService(store, nil, nil)

		_, err := svc.Create(context.Background(), EmployeeRequest{VendorID: "vendor-1", Name: "Alice", Email: strPtr("a@example.com")})
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), EmployeeRequest{VendorID: "vendor-1", Name: "Alys", Email: strPtr("a@example.com")})
		assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		svc := NewEmployeeService(newMockEmployeeStore(), nil, nil)

		_, err := svc.Create(context.Background(), EmployeeRequest{VendorID: "vendor-1", Name: "Alice", Email: strPtr("not-an-email")})
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	})
}

func TestEmployeeServiceUpdate(t *testing.T) {
	seed := func() (*mockEmployeeStore, *EmployeeService, string) {
		store := newMockEmployeeStore()
		svc := NewEmployeeService(store, nil, nil)
		emp, _ := svc.Create(context.Background(), EmployeeRequest{VendorID: "vendor-1", Name: "Alice", Email: strPtr("a@example.com")})
		return store, svc, emp.ID
	}

	t.Run("keeping your own email is not a conflict", func(t *testing.T) {
		_, svc, id := seed()

		emp, err := svc.Update(context.Background(), id, EmployeeRequest{VendorID: "vendor-1", Name: "Alicia", Email: strPtr("a@example.com")})
		require.NoError(t, err)
		assert.Equal(t, "Alicia", emp.Name)
	})

	t.Run("deactivation", func(t *testing.T) {
		_, svc, id := seed()

		inactive := false
		emp, err := svc.Update(context.Background(), id, EmployeeRequest{VendorID: "vendor-1", Name: "Alice", Email: strPtr("a@example.com"), Active: &inactive})
		require.NoError(t, err)
		assert.False(t, emp.Active)

		active, err := svc.List(context.Background(), "vendor-1", true)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("vendor mismatch", func(t *testing.T) {
		_, svc, id := seed()

		_, err := svc.Update(context.Background(), id, EmployeeRequest{VendorID: "vendor-2", Name: "Alice"})
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	})

	t.Run("missing employee", func(t *testing.T) {
		_, svc, _ := seed()

		_, err := svc.Update(context.Background(), "ghost", EmployeeRequest{VendorID: "vendor-1", Name: "Alice"})
		assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	})
}

func TestEmployeeServiceDelete(t *testing.T) {
	store := newMockEmployeeStore()
	svc := NewEmployeeService(store, nil, nil)
	emp, err := svc.Create(context.Background(), EmployeeRequest{VendorID: "vendor-1", Name: "Alice"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), emp.ID))
	assert.True(t, appErrors.Is(svc.Delete(context.Background(), emp.ID), appErrors.ErrNotFound))
}
