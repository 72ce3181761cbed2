package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/booking-api/internal/models"
)

func newHoldMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func holdRows() *sqlmock.Rows {
	now := time.Now()
	date, _ := time.Parse("2006-01-02", "2026-03-02")
	cart := "cart-1"
	return sqlmock.NewRows([]string{"id", "vendor_id", "product_id", "cart_id", "booking_date", "start_minute", "end_minute", "status", "expires_at", "created_at", "updated_at"}).
		AddRow("hold-1", "vendor-1", "product-1", &cart, date, 540, 570, "active", now.Add(10*time.Minute), now, now)
}

func TestHoldRepositoryFindActiveByCartAndProduct(t *testing.T) {
	t.Run("returns the newest active hold", func(t *testing.T) {
		db, mock, cleanup := newHoldMock(t)
		defer cleanup()
		repo := NewHoldRepository(db)

		mock.ExpectQuery(`SELECT .* FROM holds\s+WHERE cart_id = \$1 AND product_id = \$2 AND status = 'active' ORDER BY created_at DESC LIMIT 1`).
			WithArgs("cart-1", "product-1").
			WillReturnRows(holdRows())

		hold, err := repo.FindActiveByCartAndProduct(context.Background(), "cart-1", "product-1")
		require.NoError(t, err)
		assert.Equal(t, models.HoldActive, hold.Status)
		require.NotNil(t, hold.CartID)
		assert.Equal(t, "cart-1", *hold.CartID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no hold yields sql.ErrNoRows", func(t *testing.T) {
		db, mock, cleanup := newHoldMock(t)
		defer cleanup()
		repo := NewHoldRepository(db)

		mock.ExpectQuery(`SELECT .* FROM holds`).
			WithArgs("cart-2", "product-1").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindActiveByCartAndProduct(context.Background(), "cart-2", "product-1")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestHoldRepositoryReleaseExpired(t *testing.T) {
	db, mock, cleanup := newHoldMock(t)
	defer cleanup()
	repo := NewHoldRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE holds SET status = 'released', updated_at = \$1 WHERE status = 'active' AND expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ReleaseExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
