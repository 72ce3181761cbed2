package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloop/booking-api/internal/models"
	"github.com/marketloop/booking-api/internal/service"
	"github.com/marketloop/booking-api/pkg/storage"
)

func newReportHandler(t *testing.T) *ReportHandler {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)

	repo := &fakeBookingRepo{bookings: make(map[string]models.Booking)}
	svc := service.NewReportService(repo, fakeProductRepo{}, fakeEmployeeLister{}, store, signer, 1, nil, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)

	return NewReportHandler(svc)
}

func TestReportHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("queues a day sheet and serves the download", func(t *testing.T) {
		h := newReportHandler(t)

		body, _ := json.Marshal(service.DaySheetRequest{VendorID: "vendor-1", Date: "2026-03-02", Format: "csv"})
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		h.Create(c)

		require.Equal(t, http.StatusAccepted, rec.Code)
		var envelope responseEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		jobID, _ := envelope.Data["id"].(string)
		require.NotEmpty(t, jobID)
		assert.Equal(t, "queued", envelope.Data["status"])

		var token string
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			rec = httptest.NewRecorder()
			c, _ = gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/reports/"+jobID, nil)
			c.Params = gin.Params{{Key: "id", Value: jobID}}
			h.Get(c)
			require.Equal(t, http.StatusOK, rec.Code)

			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			if envelope.Data["status"] == "ready" {
				token, _ = envelope.Data["download_token"].(string)
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		require.NotEmpty(t, token)

		rec = httptest.NewRecorder()
		c, _ = gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/reports/download?token="+url.QueryEscape(token), nil)
		h.Download(c)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Time,Service,Staff,Customer,Status")
	})

	t.Run("rejects an unsupported format", func(t *testing.T) {
		h := newReportHandler(t)

		body := []byte(`{"vendor_id":"vendor-1","date":"2026-03-02","format":"xlsx"}`)
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing download token", func(t *testing.T) {
		h := newReportHandler(t)

		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/reports/download", nil)
		h.Download(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
