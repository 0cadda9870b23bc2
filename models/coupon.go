package models

import "time"

// CouponType selects how a coupon's discount is computed.
type CouponType string

const (
	CouponPercentage  CouponType = "percentage"
	CouponFixedAmount CouponType = "fixed_amount"
	CouponFreeService CouponType = "free_service"
)

// Valid reports whether t is a known coupon type.
func (t CouponType) Valid() bool {
	switch t {
	case CouponPercentage, CouponFixedAmount, CouponFreeService:
		return true
	}
	return false
}

// CouponStatus is the ledger state of a coupon.
type CouponStatus string

const (
	CouponActive    CouponStatus = "active"
	CouponUsed      CouponStatus = "used"
	CouponExpired   CouponStatus = "expired"
	CouponCancelled CouponStatus = "cancelled"
)

// Coupon is a redeemable discount code. Codes compare case-insensitively;
// the canonical stored form is trimmed and upper-cased. UsedCount never
// exceeds UsageLimit, and Status flips to "used" exactly when it reaches it.
type Coupon struct {
	ID         string       `bson:"id" json:"id"`
	Code       string       `bson:"code" json:"code"`
	Type       CouponType   `bson:"type" json:"type"`
	Value      float64      `bson:"value" json:"value"`
	ServiceID  string       `bson:"service_id,omitempty" json:"serviceId,omitempty"` // restrict to one service
	ClientID   string       `bson:"client_id,omitempty" json:"clientId,omitempty"`   // restrict to one client
	ValidFrom  time.Time    `bson:"valid_from" json:"validFrom"`
	ValidUntil time.Time    `bson:"valid_until" json:"validUntil"`
	UsageLimit int          `bson:"usage_limit" json:"usageLimit"`
	UsedCount  int          `bson:"used_count" json:"usedCount"`
	Status     CouponStatus `bson:"status" json:"status"`
	CreatedAt  time.Time    `bson:"created_at" json:"createdAt"`
}

// CouponUsage is one immutable redemption record, appended exactly once
// per successful redemption.
type CouponUsage struct {
	ID              string    `bson:"id" json:"id"`
	CouponID        string    `bson:"coupon_id" json:"couponId"`
	BookingID       string    `bson:"booking_id" json:"bookingId"`
	UsedBy          string    `bson:"used_by" json:"usedBy"` // client id
	UsedAt          time.Time `bson:"used_at" json:"usedAt"`
	DiscountApplied float64   `bson:"discount_applied" json:"discountApplied"`
}

// CouponValidation is the outcome of a successful validation: the coupon
// plus the discount it would apply to the quoted charge.
type CouponValidation struct {
	Coupon   Coupon  `json:"coupon"`
	Discount float64 `json:"discount"`
}
