package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentOutcome is the abstract signal from the payment provider.
type PaymentOutcome string

const (
	OutcomePaid    PaymentOutcome = "paid"
	OutcomeFailed  PaymentOutcome = "failed"
	OutcomePending PaymentOutcome = "pending"
)

// PaymentVerifier resolves a payment proof (a provider payment reference)
// to a transaction id and an outcome. The booking engine only consumes
// the abstract outcome; provider specifics stay behind this port.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, ref string) (txnID string, outcome PaymentOutcome, err error)
}

// StripePaymentVerifier checks a PaymentIntent against the Stripe API.
type StripePaymentVerifier struct{}

func (v *StripePaymentVerifier) VerifyPayment(ctx context.Context, ref string) (string, PaymentOutcome, error) {
	pi, err := paymentintent.Get(ref, nil)
	if err != nil {
		return "", OutcomeFailed, fmt.Errorf("stripe lookup failed for %s: %w", ref, err)
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return pi.ID, OutcomePaid, nil
	case stripe.PaymentIntentStatusCanceled:
		return pi.ID, OutcomeFailed, nil
	default:
		return pi.ID, OutcomePending, nil
	}
}

// OnPaymentResult applies an asynchronous payment signal to a booking.
// It is idempotent per provider transaction id: redelivering the same
// outcome leaves the booking exactly as after the first delivery.
func (be *DefaultBookingEngine) OnPaymentResult(ctx context.Context, bookingID, txnID string, outcome PaymentOutcome) error {
	logger := utils.GetLogger()

	bk, err := be.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return &StorageError{Op: "payment lookup", Err: err}
	}

	var payment models.PaymentStatus
	status := bk.Status
	switch outcome {
	case OutcomePaid:
		payment = models.PaymentPaid
		if bk.Status == models.BookingPending {
			status = models.BookingConfirmed
		}
	case OutcomeFailed:
		payment = models.PaymentOverdue
	case OutcomePending:
		return nil
	default:
		return &PaymentError{Message: fmt.Sprintf("unknown payment outcome %q", outcome)}
	}

	// Redelivery of an already-applied signal is a no-op.
	if bk.PaymentTxnID == txnID && bk.PaymentStatus == payment && bk.Status == status {
		logger.Debug("duplicate payment signal ignored",
			zap.String("bookingID", bookingID), zap.String("txnID", txnID))
		return nil
	}

	applied, err := be.BookingRepo.SetPaymentOutcome(ctx, bookingID, txnID, payment, status)
	if err != nil {
		return &StorageError{Op: "payment update", Err: err}
	}
	if !applied {
		return &PaymentError{Message: fmt.Sprintf("booking %s already carries a different provider transaction", bookingID)}
	}

	if outcome == OutcomePaid && be.Notifier != nil {
		if err := be.Notifier.Notify(ctx, bk.ClientID, models.NotifyPaymentConfirmed,
			"Payment received",
			fmt.Sprintf("We received your payment for the session on %s at %s.", bk.Date, models.MinutesToClock(bk.StartMinute)),
			map[string]any{"bookingId": bk.ID, "txnId": txnID},
		); err != nil {
			logger.Warn("failed to record payment notification", zap.Error(err))
		}
	}
	return nil
}

// AwaitPaymentResult polls the verifier until the provider settles the
// payment or ctx is cancelled. Cancellation stops the poll without
// touching booking state; no lock is held while waiting.
func (be *DefaultBookingEngine) AwaitPaymentResult(ctx context.Context, bookingID, ref string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			txnID, outcome, err := be.Payments.VerifyPayment(ctx, ref)
			if err != nil {
				utils.GetLogger().Warn("payment poll failed", zap.String("ref", ref), zap.Error(err))
				continue
			}
			if outcome == OutcomePending {
				continue
			}
			return be.OnPaymentResult(ctx, bookingID, txnID, outcome)
		}
	}
}
