package coupon

import "fmt"

// CouponError codes. Every validation failure maps to exactly one code.
const (
	CodeNotFound        = "NotFound"
	CodeInactive        = "Inactive"
	CodeExpired         = "Expired"
	CodeLimitReached    = "LimitReached"
	CodeClientMismatch  = "ClientMismatch"
	CodeServiceMismatch = "ServiceMismatch"
)

// CouponError describes why a code could not be validated or redeemed.
type CouponError struct {
	Code    string
	Message string
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCouponError builds a CouponError with the given code and message.
func NewCouponError(code, msg string) error {
	return &CouponError{Code: code, Message: msg}
}
