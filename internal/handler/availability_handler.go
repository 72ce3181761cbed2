package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketloop/booking-api/internal/service"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
	"github.com/marketloop/booking-api/pkg/response"
)

// AvailabilityHandler exposes availability window and day schedule endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// List godoc
// @Summary List a vendor's availability windows
// @Tags Availability
// @Produce json
// @Param vendorId path string true "Vendor ID"
// @Success 200 {object} response.Envelope
// @Router /vendors/{vendorId}/availability-windows [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	windows, err := h.availability.ListWindows(c.Request.Context(), c.Param("vendorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// Get godoc
// @Summary Get one availability window
// @Tags Availability
// @Produce json
// @Param id path string true "Window ID"
// @Success 200 {object} response.Envelope
// @Router /availability-windows/{id} [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	window, err := h.availability.GetWindow(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Create godoc
// @Summary Create an availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body service.WindowRequest true "Window payload"
// @Success 201 {object} response.Envelope
// @Router /availability-windows [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req service.WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	window, err := h.availability.CreateWindow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, window)
}

// Update godoc
// @Summary Update an availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Window ID"
// @Param payload body service.WindowRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Router /availability-windows/{id} [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req service.WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	window, err := h.availability.UpdateWindow(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Delete godoc
// @Summary Delete an availability window
// @Tags Availability
// @Produce json
// @Param id path string true "Window ID"
// @Success 204
// @Router /availability-windows/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	if err := h.availability.DeleteWindow(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TimeSlots godoc
// @Summary List bookable slots for a vendor on a date
// @Tags Availability
// @Produce json
// @Param vendorId path string true "Vendor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /vendors/{vendorId}/time-slots [get]
func (h *AvailabilityHandler) TimeSlots(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid or missing date, expected YYYY-MM-DD"))
		return
	}
	schedule, err := h.availability.DaySchedule(c.Request.Context(), c.Param("vendorId"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}
