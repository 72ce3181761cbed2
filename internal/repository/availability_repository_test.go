package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/booking-api/internal/models"
)

func newWindowMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAvailabilityRepositoryListByVendor(t *testing.T) {
	db, mock, cleanup := newWindowMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "vendor_id", "day_of_week", "start_minute", "end_minute", "slot_duration_minutes", "employee_count", "created_at", "updated_at"}).
		AddRow("w1", "vendor-1", 1, 540, 720, 30, 2, now, now).
		AddRow("w2", "vendor-1", 3, 600, 1020, 60, 1, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, vendor_id, day_of_week, start_minute, end_minute, slot_duration_minutes, employee_count, created_at, updated_at FROM availability_windows WHERE vendor_id = $1 ORDER BY day_of_week ASC, start_minute ASC`)).
		WithArgs("vendor-1").
		WillReturnRows(rows)

	windows, err := repo.ListByVendor(context.Background(), "vendor-1")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, 30, windows[0].SlotDuration)
	assert.Equal(t, 1, windows[1].EmployeeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newWindowMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(`INSERT INTO availability_windows`).
		WithArgs(sqlmock.AnyArg(), "vendor-1", 1, 540, 720, 30, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	window := &models.AvailabilityWindow{VendorID: "vendor-1", DayOfWeek: 1, StartMinute: 540, EndMinute: 720, SlotDuration: 30, EmployeeCount: 2}
	require.NoError(t, repo.Create(context.Background(), window))
	assert.NotEmpty(t, window.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newWindowMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(`UPDATE availability_windows`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	window := &models.AvailabilityWindow{ID: "ghost", VendorID: "vendor-1", DayOfWeek: 1, StartMinute: 540, EndMinute: 720, SlotDuration: 30, EmployeeCount: 2}
	err := repo.Update(context.Background(), window)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newWindowMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM availability_windows WHERE id = $1`)).
		WithArgs("w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "w1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
