package scheduling

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
	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"go.uber.org/zap"
)

// DefaultSessionMinutes is assumed for bookings whose service is no longer
// in the catalogue.
const DefaultSessionMinutes = 60

// AvailableSlotsResult is the slot query read model for one therapist-date.
type AvailableSlotsResult struct {
	Date                 string              `json:"date"`
	TherapistID          string              `json:"therapistId"`
	Slots                []models.SlotOption `json:"slots"`
	DayUnavailableReason string              `json:"dayUnavailableReason,omitempty"`
}

// SchedulingEngine computes bookable slots for a therapist and date.
type SchedulingEngine interface {
	// ListAvailableSlots answers "what times can this client book with
	// this therapist on this date" for the requested service duration.
	// clientEmail is optional; when set, the client's own bookings
	// elsewhere also exclude slots.
	ListAvailableSlots(ctx context.Context, date, therapistID string, serviceDurationMinutes int, clientEmail string) (AvailableSlotsResult, error)
}

// DefaultSchedulingEngine is the production implementation.
type DefaultSchedulingEngine struct {
	TherapistRepo therapistRepo.TherapistRepository
	BookingRepo   bookingRepo.BookingRepository
	ServiceRepo   serviceRepo.ServiceRepository
	ClientRepo    clientRepo.ClientRepository
}

func (se *DefaultSchedulingEngine) ListAvailableSlots(
	ctx context.Context,
	date, therapistID string,
	serviceDurationMinutes int,
	clientEmail string,
) (AvailableSlotsResult, error) {
	logger := utils.GetLogger()

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return AvailableSlotsResult{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	therapist, err := se.TherapistRepo.GetByID(ctx, therapistID)
	if err != nil {
		return AvailableSlotsResult{}, fmt.Errorf("failed to fetch therapist: %w", err)
	}
	av := therapist.Availability

	result := AvailableSlotsResult{Date: date, TherapistID: therapistID}

	if IsDateBlocked(av, day) {
		result.DayUnavailableReason = ReasonDateBlocked
		return result, nil
	}
	schedule := ResolveDay(day, av)
	if !schedule.Available {
		result.DayUnavailableReason = schedule.Reason
		return result, nil
	}

	slots := GenerateSlots(schedule.Hours, schedule.Breaks, serviceDurationMinutes)

	durationFor, err := se.durationLookup(ctx)
	if err != nil {
		return AvailableSlotsResult{}, err
	}

	therapistBookings, err := se.BookingRepo.ListByTherapistAndDate(ctx, therapistID, date)
	if err != nil {
		return AvailableSlotsResult{}, fmt.Errorf("failed to fetch therapist bookings: %w", err)
	}

	var clientBookings []models.Booking
	if clientEmail != "" {
		client, err := se.ClientRepo.GetByEmail(ctx, clientEmail)
		switch {
		case err == nil:
			clientBookings, err = se.BookingRepo.ListByClientAndDate(ctx, client.ID, date)
			if err != nil {
				return AvailableSlotsResult{}, fmt.Errorf("failed to fetch client bookings: %w", err)
			}
		case errors.Is(err, clientRepo.ErrNotFound):
			// first-time client, nothing to exclude
		default:
			return AvailableSlotsResult{}, fmt.Errorf("failed to resolve client: %w", err)
		}
	}

	policy := Policy{
		MinAdvanceNoticeHours: av.MinAdvanceNoticeHours,
		MaxAdvanceBookingDays: av.MaxAdvanceBookingDays,
		BufferMinutes:         av.BufferTimeMinutes,
	}
	result.Slots = ApplyConflicts(slots, day, time.Now(), serviceDurationMinutes, therapistBookings, clientBookings, durationFor, policy)

	logger.Debug("computed available slots",
		zap.String("therapistID", therapistID),
		zap.String("date", date),
		zap.Int("slots", len(result.Slots)))
	return result, nil
}

// durationLookup loads the service catalogue once and returns the
// duration port consumed by the conflict checker.
func (se *DefaultSchedulingEngine) durationLookup(ctx context.Context) (DurationFunc, error) {
	services, err := se.ServiceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service catalogue: %w", err)
	}
	return DurationLookup(services), nil
}
