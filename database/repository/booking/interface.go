package bookingRepo

import (
	"context"
	"errors"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// ErrNotFound is returned when no booking matches the given identifier.
var ErrNotFound = errors.New("booking not found")

// ErrSlotTaken is returned by CreateIfSlotFree when the requested interval
// overlaps an existing non-cancelled booking of the therapist or client.
var ErrSlotTaken = errors.New("slot already taken")

// DurationFunc resolves a service id to its session duration in minutes.
// It is injected so the repository stays free of the service catalogue.
type DurationFunc func(serviceID string) int

// BookingRepository defines data access for bookings. Bookings are never
// deleted; cancellation is a status update.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ListByTherapistAndDate returns all non-cancelled bookings of the
	// therapist on the given date.
	ListByTherapistAndDate(ctx context.Context, therapistID, date string) ([]models.Booking, error)
	// ListByClientAndDate returns all non-cancelled bookings of the client
	// on the given date, across all therapists.
	ListByClientAndDate(ctx context.Context, clientID, date string) ([]models.Booking, error)
	// CreateIfSlotFree inserts the booking only if its occupied interval
	// does not overlap any non-cancelled booking of the same therapist or
	// the same client. The check and the insert happen inside one
	// transaction; a conflict yields ErrSlotTaken and no write.
	// excludeBookingID, when non-empty, is ignored during the overlap
	// check (used by reschedule to move an existing booking).
	CreateIfSlotFree(ctx context.Context, booking *models.Booking, durationFor DurationFunc, bufferMinutes int, excludeBookingID string) error
	Update(ctx context.Context, booking *models.Booking) error
	// SetPaymentOutcome applies a payment-provider result. The update is
	// conditional on the booking having no provider transaction id yet or
	// the same one, which makes redelivery of the same event a no-op.
	SetPaymentOutcome(ctx context.Context, bookingID, txnID string, payment models.PaymentStatus, status models.BookingStatus) (bool, error)
	// ListDueReminders returns confirmed bookings on the given dates that
	// have not had a reminder sent yet.
	ListDueReminders(ctx context.Context, dates []string) ([]models.Booking, error)
	MarkReminderSent(ctx context.Context, bookingID string) error
}
