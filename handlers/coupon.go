package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisperes28-droid/desperto-app-sub001/services/coupon"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

// CouponHandler exposes coupon validation to the booking UI. Redemption
// itself happens inside the booking commit, never through this surface.
type CouponHandler struct {
	Ledger coupon.CouponLedger
}

func NewCouponHandler(ledger coupon.CouponLedger) *CouponHandler {
	return &CouponHandler{Ledger: ledger}
}

// ValidateCoupon performs a dry-run check: eligibility plus the discount
// the code would apply to the given charge. Nothing is consumed.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var input struct {
		Code         string  `json:"code" binding:"required"`
		ServiceID    string  `json:"serviceId,omitempty"`
		ClientEmail  string  `json:"clientEmail,omitempty"`
		ChargeAmount float64 `json:"chargeAmount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	validation, err := h.Ledger.Validate(c.Request.Context(), input.Code, input.ServiceID, input.ClientEmail, input.ChargeAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"coupon":   validation.Coupon,
		"discount": validation.Discount,
	})
}

// RedeemCoupon consumes one use of a coupon outside the booking commit,
// for operator-recorded in-person redemptions. Losing the last-use race
// yields a coupon error and no usage record.
func (h *CouponHandler) RedeemCoupon(c *gin.Context) {
	couponID := c.Param("couponID")
	var input struct {
		BookingID       string  `json:"bookingId" binding:"required"`
		ClientID        string  `json:"clientId" binding:"required"`
		DiscountApplied float64 `json:"discountApplied"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Ledger.Redeem(c.Request.Context(), couponID, input.BookingID, input.ClientID, input.DiscountApplied); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "redeemed"})
}
