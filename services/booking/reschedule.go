package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/booking"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"go.uber.org/zap"
)

// RequestReschedule attaches a pending move proposal to the booking. The
// booking status does not change until an operator resolves the proposal.
func (be *DefaultBookingEngine) RequestReschedule(ctx context.Context, bookingID, newDate string, newStartMinute int, reason string) error {
	bk, err := be.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return &ValidationError{Field: "bookingId", Message: "unknown booking"}
		}
		return &StorageError{Op: "booking lookup", Err: err}
	}
	if bk.Status.Terminal() {
		return &PolicyViolationError{Reason: fmt.Sprintf("cannot reschedule a %s booking", bk.Status)}
	}
	if _, err := time.ParseInLocation("2006-01-02", newDate, time.Local); err != nil {
		return &ValidationError{Field: "newDate", Message: "date must be YYYY-MM-DD"}
	}
	if newStartMinute < 0 || newStartMinute >= 24*60 {
		return &ValidationError{Field: "newStartMinute", Message: "start time outside the day"}
	}

	bk.Reschedule = &models.RescheduleRequest{
		NewDate:        newDate,
		NewStartMinute: newStartMinute,
		Reason:         reason,
		RequestedAt:    time.Now(),
	}
	bk.UpdatedAt = time.Now()
	if err := be.BookingRepo.Update(ctx, bk); err != nil {
		return &StorageError{Op: "reschedule request", Err: err}
	}

	utils.GetLogger().Info("reschedule requested",
		zap.String("bookingID", bookingID),
		zap.String("newDate", newDate),
		zap.Int("newStart", newStartMinute))
	return nil
}

// ResolveReschedule approves or rejects a pending proposal. Approval
// re-runs the full conflict check against the new instant, excluding the
// booking being moved, and only then mutates the booking. Rejection
// leaves the booking unchanged and clears the proposal.
func (be *DefaultBookingEngine) ResolveReschedule(ctx context.Context, bookingID string, approve bool, responseMessage string) (*models.Booking, error) {
	logger := utils.GetLogger()

	bk, err := be.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &ValidationError{Field: "bookingId", Message: "unknown booking"}
		}
		return nil, &StorageError{Op: "booking lookup", Err: err}
	}
	if bk.Reschedule == nil {
		return nil, &ValidationError{Field: "bookingId", Message: "no pending reschedule proposal"}
	}

	if !approve {
		bk.Reschedule = nil
		bk.UpdatedAt = time.Now()
		if err := be.BookingRepo.Update(ctx, bk); err != nil {
			return nil, &StorageError{Op: "reschedule rejection", Err: err}
		}
		be.notifyRescheduleOutcome(ctx, bk, false, responseMessage)
		return bk, nil
	}

	therapist, err := be.TherapistRepo.GetByID(ctx, bk.TherapistID)
	if err != nil {
		return nil, &StorageError{Op: "therapist lookup", Err: err}
	}
	svc, err := be.ServiceRepo.GetByID(ctx, bk.ServiceID)
	if err != nil {
		return nil, &StorageError{Op: "service lookup", Err: err}
	}
	durationFor, err := be.durationLookup(ctx)
	if err != nil {
		return nil, err
	}

	proposal := *bk.Reschedule

	unlock := be.locks.acquire(bk.TherapistID, proposal.NewDate)
	defer unlock()

	if err := be.checkSlot(ctx, therapist, proposal.NewDate, proposal.NewStartMinute, svc.DurationMinutes, durationFor, bk.ClientID, bk.ID); err != nil {
		return nil, err
	}

	bk.Date = proposal.NewDate
	bk.StartMinute = proposal.NewStartMinute
	bk.Status = models.BookingConfirmed
	bk.Reschedule = nil
	bk.UpdatedAt = time.Now()
	if err := be.BookingRepo.Update(ctx, bk); err != nil {
		return nil, &StorageError{Op: "reschedule approval", Err: err}
	}

	be.notifyRescheduleOutcome(ctx, bk, true, responseMessage)
	logger.Info("reschedule resolved",
		zap.String("bookingID", bookingID),
		zap.Bool("approved", true),
		zap.String("date", bk.Date),
		zap.Int("start", bk.StartMinute))
	return bk, nil
}

func (be *DefaultBookingEngine) notifyRescheduleOutcome(ctx context.Context, bk *models.Booking, approved bool, responseMessage string) {
	if be.Notifier == nil {
		return
	}
	title := "Reschedule declined"
	msg := "Your reschedule request could not be accommodated."
	if approved {
		title = "Reschedule confirmed"
		msg = fmt.Sprintf("Your session was moved to %s at %s.", bk.Date, models.MinutesToClock(bk.StartMinute))
	}
	if responseMessage != "" {
		msg += " " + responseMessage
	}
	if err := be.Notifier.Notify(ctx, bk.ClientID, models.NotifyRescheduleOutcome, title, msg,
		map[string]any{"bookingId": bk.ID, "approved": approved}); err != nil {
		utils.GetLogger().Warn("failed to record reschedule notification", zap.Error(err))
	}
}
