package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/services/booking"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Engine booking.BookingEngine
}

func NewBookingHandler(engine booking.BookingEngine) *BookingHandler {
	return &BookingHandler{Engine: engine}
}

// CreateBooking commits a fully-selected booking. The slot is re-validated
// at commit time, so a stale selection yields a 409 rather than a double
// booking.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	bk, err := h.Engine.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bk)
}

// UpdateBooking applies an operator status change and/or therapist
// reassignment.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID := c.Param("bookingID")
	var update models.BookingUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	bk, err := h.Engine.UpdateBooking(c.Request.Context(), bookingID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bk)
}

// RequestReschedule attaches a move proposal to a booking.
func (h *BookingHandler) RequestReschedule(c *gin.Context) {
	bookingID := c.Param("bookingID")
	var input struct {
		NewDate        string `json:"newDate" binding:"required"`
		NewStartMinute int    `json:"newStartMinute"`
		Reason         string `json:"reason,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Engine.RequestReschedule(c.Request.Context(), bookingID, input.NewDate, input.NewStartMinute, input.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "reschedule requested"})
}

// ResolveReschedule approves or rejects a pending proposal.
func (h *BookingHandler) ResolveReschedule(c *gin.Context) {
	bookingID := c.Param("bookingID")
	var input struct {
		Approve         bool   `json:"approve"`
		ResponseMessage string `json:"responseMessage,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	bk, err := h.Engine.ResolveReschedule(c.Request.Context(), bookingID, input.Approve, input.ResponseMessage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bk)
}
