package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisperes28-droid/desperto-app-sub001/services/booking"
	"github.com/luisperes28-droid/desperto-app-sub001/services/coupon"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

// respondError maps domain errors onto HTTP statuses. Every domain error
// is recoverable and carries a human-readable reason for the caller.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *booking.ValidationError
		conflictErr   *booking.SlotConflictError
		policyErr     *booking.PolicyViolationError
		couponErr     *coupon.CouponError
		payRequired   *booking.PaymentRequiredError
		payErr        *booking.PaymentError
		storageErr    *booking.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, "invalid input", validationErr.Error())
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "slot conflict",
			"reason":     conflictErr.Reason,
			"occupiedBy": conflictErr.OccupiedBy,
		})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "policy violation",
			"reason": policyErr.Reason,
		})
	case errors.As(err, &couponErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "coupon rejected",
			"code":   couponErr.Code,
			"reason": couponErr.Message,
		})
	case errors.As(err, &payRequired):
		utils.JSONError(c, http.StatusPaymentRequired, "payment required", payRequired.Message)
	case errors.As(err, &payErr):
		utils.JSONError(c, http.StatusPaymentRequired, "payment error", payErr.Message)
	case errors.As(err, &storageErr):
		utils.JSONError(c, http.StatusInternalServerError, "storage failure", "The booking could not be saved. Please try again.")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
