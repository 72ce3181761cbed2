package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketloop/booking-api/internal/service"
	appErrors "github.com/marketloop/booking-api/pkg/errors"
	"github.com/marketloop/booking-api/pkg/response"
)

// HoldHandler exposes cart-side slot hold endpoints.
type HoldHandler struct {
	holds *service.HoldService
}

// NewHoldHandler constructs HoldHandler.
func NewHoldHandler(holds *service.HoldService) *HoldHandler {
	return &HoldHandler{holds: holds}
}

// SelectSlot godoc
// @Summary Pin a slot for a cart line
// @Tags Holds
// @Accept json
// @Produce json
// @Param payload body service.SelectSlotRequest true "Slot selection"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Slot full"
// @Router /holds [post]
func (h *HoldHandler) SelectSlot(c *gin.Context) {
	var req service.SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hold, err := h.holds.SelectSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hold)
}

// Get godoc
// @Summary Get one hold
// @Tags Holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} response.Envelope
// @Router /holds/{id} [get]
func (h *HoldHandler) Get(c *gin.Context) {
	hold, err := h.holds.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hold, nil)
}

// Release godoc
// @Summary Release a hold's slot claim
// @Tags Holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 204
// @Router /holds/{id} [delete]
func (h *HoldHandler) Release(c *gin.Context) {
	if err := h.holds.Release(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
