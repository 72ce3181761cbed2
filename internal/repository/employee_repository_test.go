package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/booking-api/internal/models"
)

func newEmployeeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEmployeeRepositoryListByVendor(t *testing.T) {
	db, mock, cleanup := newEmployeeMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "vendor_id", "name", "email", "active", "created_at", "updated_at"}).
		AddRow("emp-1", "vendor-1", "Alice", nil, true, now, now).
		AddRow("emp-2", "vendor-1", "Bob", "bob@example.com", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vendor_id, name, email, active, created_at, updated_at FROM employees WHERE vendor_id = $1 AND active = TRUE ORDER BY created_at ASC, id ASC`)).
		WithArgs("vendor-1").
		WillReturnRows(rows)

	staff, err := repo.ListByVendor(context.Background(), "vendor-1", true)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "Alice", staff[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newEmployeeMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("vendor-1", "a@example.com", "emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.ExistsByEmail(context.Background(), "vendor-1", "a@example.com", "emp-1")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEmployeeMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec(`INSERT INTO employees`).
		WithArgs(sqlmock.AnyArg(), "vendor-1", "Alice", nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	employee := &models.Employee{VendorID: "vendor-1", Name: "Alice", Active: true}
	require.NoError(t, repo.Create(context.Background(), employee))
	assert.NotEmpty(t, employee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
