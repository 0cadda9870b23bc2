package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/booking"
	clientRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/client"
	serviceRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/service"
	therapistRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/therapist"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/services/coupon"
	"github.com/luisperes28-droid/desperto-app-sub001/services/notification"
	"github.com/luisperes28-droid/desperto-app-sub001/services/scheduling"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingEngine commits and mutates bookings under the lifecycle rules.
type BookingEngine interface {
	CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, update models.BookingUpdate) (*models.Booking, error)
	RequestReschedule(ctx context.Context, bookingID, newDate string, newStartMinute int, reason string) error
	ResolveReschedule(ctx context.Context, bookingID string, approve bool, responseMessage string) (*models.Booking, error)
	OnPaymentResult(ctx context.Context, bookingID, txnID string, outcome PaymentOutcome) error
}

// DefaultBookingEngine is the production implementation.
type DefaultBookingEngine struct {
	BookingRepo   bookingRepo.BookingRepository
	TherapistRepo therapistRepo.TherapistRepository
	ServiceRepo   serviceRepo.ServiceRepository
	ClientRepo    clientRepo.ClientRepository
	Ledger        coupon.CouponLedger
	Payments      PaymentVerifier
	Notifier      notification.NotificationService

	locks *slotLocks
}

// NewDefaultBookingEngine wires the engine with its collaborators.
func NewDefaultBookingEngine(
	bookings bookingRepo.BookingRepository,
	therapists therapistRepo.TherapistRepository,
	services serviceRepo.ServiceRepository,
	clients clientRepo.ClientRepository,
	ledger coupon.CouponLedger,
	payments PaymentVerifier,
	notifier notification.NotificationService,
) *DefaultBookingEngine {
	return &DefaultBookingEngine{
		BookingRepo:   bookings,
		TherapistRepo: therapists,
		ServiceRepo:   services,
		ClientRepo:    clients,
		Ledger:        ledger,
		Payments:      payments,
		Notifier:      notifier,
		locks:         newSlotLocks(),
	}
}

// CreateBooking validates the request, re-checks the slot at commit time,
// and inserts the booking behind the per-therapist-date lock plus the
// repository's transactional overlap guard. The slot displayed at
// selection time may have been taken since; the loser of that race gets
// a SlotConflictError and nothing is written.
func (be *DefaultBookingEngine) CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	logger := utils.GetLogger()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	svc, err := be.ServiceRepo.GetByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			return nil, &ValidationError{Field: "serviceId", Message: "unknown service"}
		}
		return nil, &StorageError{Op: "service lookup", Err: err}
	}

	therapist, err := be.TherapistRepo.GetByID(ctx, input.TherapistID)
	if err != nil {
		if errors.Is(err, therapistRepo.ErrNotFound) {
			return nil, &ValidationError{Field: "therapistId", Message: "unknown therapist"}
		}
		return nil, &StorageError{Op: "therapist lookup", Err: err}
	}

	client, err := be.ClientRepo.FindOrCreate(ctx, models.Client{
		Name:  input.ClientName,
		Email: input.ClientEmail,
		Phone: input.ClientPhone,
	})
	if err != nil {
		return nil, &StorageError{Op: "client resolution", Err: err}
	}

	charge := svc.Price
	var discount float64
	var validatedCoupon *models.Coupon
	if input.CouponCode != "" {
		validation, err := be.Ledger.Validate(ctx, input.CouponCode, input.ServiceID, input.ClientEmail, charge)
		if err != nil {
			return nil, err
		}
		discount = validation.Discount
		validatedCoupon = &validation.Coupon
	}
	coveredByCoupon := discount >= charge && charge > 0

	paid := false
	txnID := ""
	if input.PaymentProof != "" {
		id, outcome, err := be.Payments.VerifyPayment(ctx, input.PaymentProof)
		if err != nil {
			return nil, &PaymentError{Message: err.Error()}
		}
		if outcome != OutcomePaid {
			return nil, &PaymentRequiredError{Message: fmt.Sprintf("payment %s is not confirmed", input.PaymentProof)}
		}
		paid = true
		txnID = id
	}

	durationFor, err := be.durationLookup(ctx)
	if err != nil {
		return nil, err
	}

	unlock := be.locks.acquire(input.TherapistID, input.Date)
	defer unlock()

	if err := be.checkSlot(ctx, therapist, input.Date, input.StartMinute, svc.DurationMinutes, durationFor, client.ID, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	status := models.BookingPending
	payment := models.PaymentPending
	switch {
	case paid || coveredByCoupon:
		status = models.BookingConfirmed
		payment = models.PaymentPaid
	case discount > 0:
		// The coupon covered part of the charge; the rest is still owed.
		payment = models.PaymentPartial
	}

	bk := &models.Booking{
		ID:              uuid.New().String(),
		ClientID:        client.ID,
		ServiceID:       svc.ID,
		TherapistID:     therapist.ID,
		Date:            input.Date,
		StartMinute:     input.StartMinute,
		Status:          status,
		PaymentStatus:   payment,
		PaymentTxnID:    txnID,
		DiscountApplied: discount,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if validatedCoupon != nil {
		bk.CouponCode = validatedCoupon.Code
	}

	if err := be.BookingRepo.CreateIfSlotFree(ctx, bk, bookingRepo.DurationFunc(durationFor), therapist.Availability.BufferTimeMinutes, ""); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, &SlotConflictError{Reason: scheduling.ReasonAlreadyBooked}
		}
		return nil, &StorageError{Op: "booking insert", Err: err}
	}

	if validatedCoupon != nil {
		if err := be.Ledger.Redeem(ctx, validatedCoupon.ID, bk.ID, client.ID, discount); err != nil {
			// The coupon lost a redemption race after the slot was taken.
			// Release the slot again and report the coupon failure.
			bk.Status = models.BookingCancelled
			bk.UpdatedAt = time.Now()
			if uerr := be.BookingRepo.Update(ctx, bk); uerr != nil {
				logger.Error("failed to release booking after redemption failure",
					zap.String("bookingID", bk.ID), zap.Error(uerr))
			}
			return nil, err
		}
	}

	if be.Notifier != nil {
		title := "Booking received"
		kind := models.NotifyBookingConfirmed
		msg := fmt.Sprintf("Your %s session on %s at %s is awaiting payment.", svc.Name, bk.Date, models.MinutesToClock(bk.StartMinute))
		if status == models.BookingConfirmed {
			title = "Booking confirmed"
			msg = fmt.Sprintf("Your %s session on %s at %s is confirmed.", svc.Name, bk.Date, models.MinutesToClock(bk.StartMinute))
		}
		if err := be.Notifier.Notify(ctx, client.ID, kind, title, msg, map[string]any{"bookingId": bk.ID}); err != nil {
			logger.Warn("failed to record booking notification", zap.Error(err))
		}
	}

	logger.Info("booking committed",
		zap.String("bookingID", bk.ID),
		zap.String("therapistID", bk.TherapistID),
		zap.String("date", bk.Date),
		zap.Int("start", bk.StartMinute),
		zap.String("status", string(bk.Status)))
	return bk, nil
}

func validateInput(input models.BookingInput) error {
	if input.ClientEmail == "" {
		return &ValidationError{Field: "clientEmail", Message: "missing contact email"}
	}
	if input.TherapistID == "" {
		return &ValidationError{Field: "therapistId", Message: "missing therapist"}
	}
	if input.ServiceID == "" {
		return &ValidationError{Field: "serviceId", Message: "missing service"}
	}
	if _, err := time.ParseInLocation("2006-01-02", input.Date, time.Local); err != nil {
		return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	if input.StartMinute < 0 || input.StartMinute >= 24*60 {
		return &ValidationError{Field: "startMinute", Message: "start time outside the day"}
	}
	return nil
}

// checkSlot re-validates one candidate start against the full rule chain:
// blocked date, working day, slot grid, advance-notice policy, and overlap
// with existing bookings of the therapist and the client. excludeID names
// a booking being moved, ignored during the overlap check.
func (be *DefaultBookingEngine) checkSlot(
	ctx context.Context,
	therapist *models.Therapist,
	date string,
	startMinute, durationMinutes int,
	durationFor scheduling.DurationFunc,
	clientID, excludeID string,
) error {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	av := therapist.Availability

	if scheduling.IsDateBlocked(av, day) {
		return &PolicyViolationError{Reason: scheduling.ReasonDateBlocked}
	}
	schedule := scheduling.ResolveDay(day, av)
	if !schedule.Available {
		return &PolicyViolationError{Reason: schedule.Reason}
	}
	if startMinute < schedule.Hours.Start || startMinute >= schedule.Hours.End ||
		(startMinute-schedule.Hours.Start)%models.SlotCadenceMinutes != 0 {
		return &ValidationError{Field: "startMinute", Message: "start time is not on the slot grid"}
	}

	therapistBookings, err := be.BookingRepo.ListByTherapistAndDate(ctx, therapist.ID, date)
	if err != nil {
		return &StorageError{Op: "booking lookup", Err: err}
	}
	clientBookings, err := be.BookingRepo.ListByClientAndDate(ctx, clientID, date)
	if err != nil {
		return &StorageError{Op: "booking lookup", Err: err}
	}

	slots := scheduling.GenerateSlots(schedule.Hours, schedule.Breaks, durationMinutes)
	policy := scheduling.Policy{
		MinAdvanceNoticeHours: av.MinAdvanceNoticeHours,
		MaxAdvanceBookingDays: av.MaxAdvanceBookingDays,
		BufferMinutes:         av.BufferTimeMinutes,
	}
	checked := scheduling.ApplyConflicts(slots, day, time.Now(), durationMinutes,
		exclude(therapistBookings, excludeID), exclude(clientBookings, excludeID), durationFor, policy)

	for _, slot := range checked {
		if slot.StartMinute != startMinute {
			continue
		}
		if slot.Available {
			return nil
		}
		switch slot.Reason {
		case scheduling.ReasonTooSoon, scheduling.ReasonTooFarAhead:
			return &PolicyViolationError{Reason: slot.Reason}
		default:
			return &SlotConflictError{Reason: slot.Reason, OccupiedBy: slot.OccupiedBy}
		}
	}
	return &ValidationError{Field: "startMinute", Message: "start time is not on the slot grid"}
}

func exclude(bookings []models.Booking, id string) []models.Booking {
	if id == "" {
		return bookings
	}
	kept := bookings[:0:0]
	for _, b := range bookings {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	return kept
}

func (be *DefaultBookingEngine) durationLookup(ctx context.Context) (scheduling.DurationFunc, error) {
	services, err := be.ServiceRepo.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "service catalogue lookup", Err: err}
	}
	return scheduling.DurationLookup(services), nil
}
