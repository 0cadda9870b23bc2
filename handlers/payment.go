package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisperes28-droid/desperto-app-sub001/services/booking"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

// PaymentHandler receives asynchronous payment results from the provider.
type PaymentHandler struct {
	Engine booking.BookingEngine
}

func NewPaymentHandler(engine booking.BookingEngine) *PaymentHandler {
	return &PaymentHandler{Engine: engine}
}

// PaymentWebhook applies a provider callback to the booking it references.
// Replays of the same transaction id are acknowledged without effect.
func (h *PaymentHandler) PaymentWebhook(c *gin.Context) {
	var input struct {
		BookingID string `json:"bookingId" binding:"required"`
		TxnID     string `json:"txnId" binding:"required"`
		Status    string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	var outcome booking.PaymentOutcome
	switch input.Status {
	case "paid", "succeeded":
		outcome = booking.OutcomePaid
	case "failed", "canceled":
		outcome = booking.OutcomeFailed
	case "pending", "processing":
		outcome = booking.OutcomePending
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "unknown payment status: "+input.Status)
		return
	}

	if err := h.Engine.OnPaymentResult(c.Request.Context(), input.BookingID, input.TxnID, outcome); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "applied"})
}
