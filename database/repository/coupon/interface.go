package couponRepo

import (
	"context"
	"errors"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// ErrNotFound is returned when no coupon matches the code or id.
var ErrNotFound = errors.New("coupon not found")

// ErrNotRedeemable is returned by Redeem when the coupon is no longer
// active or its usage limit has been consumed.
var ErrNotRedeemable = errors.New("coupon not redeemable")

// CouponRepository defines data access for coupons and their usage ledger.
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	// GetByCode matches the canonical (trimmed, upper-cased) code.
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	// Redeem consumes one use of the coupon and appends the usage record.
	// The read of usedCount, the limit comparison, the increment and the
	// status flip to "used" happen as one atomic unit per coupon, so two
	// racing redemptions of the last use resolve to exactly one winner;
	// the loser gets ErrNotRedeemable. Returns the coupon after the
	// increment.
	Redeem(ctx context.Context, couponID string, usage models.CouponUsage) (*models.Coupon, error)
	ListUsages(ctx context.Context, couponID string) ([]models.CouponUsage, error)
	SetStatus(ctx context.Context, couponID string, status models.CouponStatus) error
}
