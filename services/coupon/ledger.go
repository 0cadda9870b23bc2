package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	clientRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/client"
	couponRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/coupon"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CouponLedger validates redemption codes and records at-most-N usage.
type CouponLedger interface {
	// Validate checks the code against its eligibility rules and computes
	// the discount it would apply to chargeAmount. serviceID and
	// clientEmail are optional and only consulted when the coupon carries
	// the corresponding restriction.
	Validate(ctx context.Context, code, serviceID, clientEmail string, chargeAmount float64) (*models.CouponValidation, error)
	// Redeem atomically consumes one use of the coupon and appends the
	// immutable usage record.
	Redeem(ctx context.Context, couponID, bookingID, clientID string, discountApplied float64) error
}

// DefaultCouponLedger is the production implementation.
type DefaultCouponLedger struct {
	Repo       couponRepo.CouponRepository
	ClientRepo clientRepo.ClientRepository
}

// NormalizeCode canonicalizes a redemption code for case-insensitive match.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (l *DefaultCouponLedger) Validate(
	ctx context.Context,
	code, serviceID, clientEmail string,
	chargeAmount float64,
) (*models.CouponValidation, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, NewCouponError(CodeNotFound, "no coupon code supplied")
	}

	cpn, err := l.Repo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, couponRepo.ErrNotFound) {
			return nil, NewCouponError(CodeNotFound, fmt.Sprintf("coupon %q does not exist", normalized))
		}
		return nil, fmt.Errorf("failed to fetch coupon: %w", err)
	}

	now := time.Now()
	if cpn.Status != models.CouponActive {
		return nil, NewCouponError(CodeInactive, fmt.Sprintf("coupon %q is %s", normalized, cpn.Status))
	}
	if !cpn.ValidFrom.IsZero() && now.Before(cpn.ValidFrom) {
		return nil, NewCouponError(CodeInactive, fmt.Sprintf("coupon %q is not valid yet", normalized))
	}
	if cpn.ValidUntil.Before(now) {
		return nil, NewCouponError(CodeExpired, fmt.Sprintf("coupon %q expired on %s", normalized, cpn.ValidUntil.Format("2006-01-02")))
	}
	if cpn.UsedCount >= cpn.UsageLimit {
		return nil, NewCouponError(CodeLimitReached, fmt.Sprintf("coupon %q has no uses left", normalized))
	}
	if cpn.ClientID != "" {
		client, err := l.resolveClient(ctx, clientEmail)
		if err != nil || client.ID != cpn.ClientID {
			return nil, NewCouponError(CodeClientMismatch, fmt.Sprintf("coupon %q is reserved for another client", normalized))
		}
	}
	if cpn.ServiceID != "" && cpn.ServiceID != serviceID {
		return nil, NewCouponError(CodeServiceMismatch, fmt.Sprintf("coupon %q does not apply to this service", normalized))
	}

	return &models.CouponValidation{
		Coupon:   *cpn,
		Discount: Discount(*cpn, chargeAmount),
	}, nil
}

func (l *DefaultCouponLedger) resolveClient(ctx context.Context, email string) (*models.Client, error) {
	if email == "" {
		return nil, clientRepo.ErrNotFound
	}
	return l.ClientRepo.GetByEmail(ctx, email)
}

// Discount computes the amount a coupon takes off the quoted charge.
func Discount(cpn models.Coupon, chargeAmount float64) float64 {
	switch cpn.Type {
	case models.CouponFixedAmount:
		if cpn.Value > chargeAmount {
			return chargeAmount
		}
		return cpn.Value
	case models.CouponPercentage:
		return chargeAmount * cpn.Value / 100
	case models.CouponFreeService:
		return chargeAmount
	}
	return 0
}

func (l *DefaultCouponLedger) Redeem(
	ctx context.Context,
	couponID, bookingID, clientID string,
	discountApplied float64,
) error {
	usage := models.CouponUsage{
		ID:              uuid.New().String(),
		CouponID:        couponID,
		BookingID:       bookingID,
		UsedBy:          clientID,
		UsedAt:          time.Now(),
		DiscountApplied: discountApplied,
	}

	redeemed, err := l.Repo.Redeem(ctx, couponID, usage)
	if err != nil {
		if errors.Is(err, couponRepo.ErrNotRedeemable) {
			return NewCouponError(CodeLimitReached, "coupon has no uses left")
		}
		if errors.Is(err, couponRepo.ErrNotFound) {
			return NewCouponError(CodeNotFound, "coupon does not exist")
		}
		return fmt.Errorf("coupon redemption failed: %w", err)
	}

	utils.GetLogger().Info("coupon redeemed",
		zap.String("couponID", couponID),
		zap.String("bookingID", bookingID),
		zap.Int("usedCount", redeemed.UsedCount),
		zap.String("status", string(redeemed.Status)))
	return nil
}
