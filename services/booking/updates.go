package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/booking"
	therapistRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/therapist"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"go.uber.org/zap"
)

// UpdateBooking applies an operator mutation: a status change, a therapist
// reassignment, or both in one transaction. Exactly one notification is
// sent per commit regardless of how many fields changed, chosen by
// priority: cancelled first, then newly confirmed, then reassignment.
func (be *DefaultBookingEngine) UpdateBooking(ctx context.Context, bookingID string, update models.BookingUpdate) (*models.Booking, error) {
	logger := utils.GetLogger()

	bk, err := be.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &ValidationError{Field: "bookingId", Message: "unknown booking"}
		}
		return nil, &StorageError{Op: "booking lookup", Err: err}
	}

	prevStatus := bk.Status
	newStatus := bk.Status
	if update.Status != nil {
		newStatus = *update.Status
		if !newStatus.Valid() {
			return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
		}
		if !validTransition(prevStatus, newStatus) {
			return nil, &PolicyViolationError{Reason: fmt.Sprintf("cannot move a %s booking to %s", prevStatus, newStatus)}
		}
	}

	reassigned := update.TherapistID != nil && *update.TherapistID != bk.TherapistID
	if reassigned {
		therapist, err := be.TherapistRepo.GetByID(ctx, *update.TherapistID)
		if err != nil {
			if errors.Is(err, therapistRepo.ErrNotFound) {
				return nil, &ValidationError{Field: "therapistId", Message: "unknown therapist"}
			}
			return nil, &StorageError{Op: "therapist lookup", Err: err}
		}

		// A live booking moving onto another therapist's calendar must not
		// double-book them.
		if newStatus != models.BookingCancelled {
			svc, err := be.ServiceRepo.GetByID(ctx, bk.ServiceID)
			if err != nil {
				return nil, &StorageError{Op: "service lookup", Err: err}
			}
			durationFor, err := be.durationLookup(ctx)
			if err != nil {
				return nil, err
			}
			unlock := be.locks.acquire(therapist.ID, bk.Date)
			defer unlock()
			if err := be.checkSlot(ctx, therapist, bk.Date, bk.StartMinute, svc.DurationMinutes, durationFor, bk.ClientID, bk.ID); err != nil {
				return nil, err
			}
		}
		bk.TherapistID = *update.TherapistID
	}

	bk.Status = newStatus
	bk.UpdatedAt = time.Now()
	if err := be.BookingRepo.Update(ctx, bk); err != nil {
		return nil, &StorageError{Op: "booking update", Err: err}
	}

	be.notifyUpdate(ctx, bk, prevStatus, reassigned)
	logger.Info("booking updated",
		zap.String("bookingID", bookingID),
		zap.String("status", string(bk.Status)),
		zap.Bool("reassigned", reassigned))
	return bk, nil
}

// validTransition encodes the lifecycle: pending→confirmed,
// pending→cancelled, confirmed→cancelled, confirmed→completed.
// Cancellation is reachable from any non-terminal state; terminal states
// allow nothing further.
func validTransition(from, to models.BookingStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.BookingPending:
		return to == models.BookingConfirmed || to == models.BookingCancelled
	case models.BookingConfirmed:
		return to == models.BookingCancelled || to == models.BookingCompleted
	case models.BookingCompleted, models.BookingCancelled:
		return false
	}
	return false
}

// notifyUpdate sends the single highest-priority notification for a
// mutation: cancelled overrides all others, a fresh confirmation is next,
// a bare reassignment is last.
func (be *DefaultBookingEngine) notifyUpdate(ctx context.Context, bk *models.Booking, prevStatus models.BookingStatus, reassigned bool) {
	if be.Notifier == nil {
		return
	}

	var kind models.NotificationType
	var title, msg string
	when := fmt.Sprintf("%s at %s", bk.Date, models.MinutesToClock(bk.StartMinute))

	switch {
	case bk.Status == models.BookingCancelled && prevStatus != models.BookingCancelled:
		kind = models.NotifyBookingCancelled
		title = "Booking cancelled"
		msg = fmt.Sprintf("Your session on %s has been cancelled.", when)
	case bk.Status == models.BookingConfirmed && prevStatus != models.BookingConfirmed:
		kind = models.NotifyBookingConfirmed
		title = "Booking confirmed"
		msg = fmt.Sprintf("Your session on %s has been confirmed.", when)
	case reassigned:
		kind = models.NotifyTherapistChanged
		title = "Therapist changed"
		msg = fmt.Sprintf("Your session on %s will be with a different therapist.", when)
	default:
		return
	}

	if err := be.Notifier.Notify(ctx, bk.ClientID, kind, title, msg,
		map[string]any{"bookingId": bk.ID, "status": bk.Status}); err != nil {
		utils.GetLogger().Warn("failed to record update notification", zap.Error(err))
	}
}
