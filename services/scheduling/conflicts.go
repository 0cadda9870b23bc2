package scheduling

import (
	"time"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// Per-slot unavailability reasons produced by the conflict checker.
const (
	ReasonAlreadyBooked  = "already booked"
	ReasonClientConflict = "client already has a booking at this time"
	ReasonTooSoon        = "below minimum advance notice"
	ReasonTooFarAhead    = "beyond maximum advance booking window"
)

// DurationFunc resolves a service id to its session duration in minutes.
// Injected so the checker stays a pure function of bookings and policy.
type DurationFunc func(serviceID string) int

// DurationLookup builds a DurationFunc over the service catalogue.
// Unknown or zero-duration services fall back to the default session length.
func DurationLookup(services []models.Service) DurationFunc {
	durations := make(map[string]int, len(services))
	for _, svc := range services {
		durations[svc.ID] = svc.DurationMinutes
	}
	return func(serviceID string) int {
		if d, ok := durations[serviceID]; ok && d > 0 {
			return d
		}
		return DefaultSessionMinutes
	}
}

// Policy carries the advance-notice rules applied to every generated slot.
type Policy struct {
	MinAdvanceNoticeHours int
	MaxAdvanceBookingDays int
	BufferMinutes         int // gap enforced around existing bookings
}

// ApplyConflicts tags each still-available slot with booking conflicts and
// advance-notice policy. The requested duration defines the candidate's
// occupied interval; each existing booking's interval uses that booking's
// own service duration, widened by the buffer on both sides. Overlap is
// strict half-open: a slot ending exactly when a booking starts is free.
func ApplyConflicts(
	slots []models.SlotOption,
	date time.Time,
	now time.Time,
	durationMinutes int,
	therapistBookings []models.Booking,
	clientBookings []models.Booking,
	durationFor DurationFunc,
	policy Policy,
) []models.SlotOption {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	horizon := now.AddDate(0, 0, policy.MaxAdvanceBookingDays)
	notice := time.Duration(policy.MinAdvanceNoticeHours) * time.Hour

	checked := make([]models.SlotOption, len(slots))
	for i, slot := range slots {
		if !slot.Available {
			checked[i] = slot
			continue
		}

		slotTime := midnight.Add(time.Duration(slot.StartMinute) * time.Minute)
		if slotTime.Sub(now) < notice {
			slot.Available = false
			slot.Reason = ReasonTooSoon
			checked[i] = slot
			continue
		}
		if policy.MaxAdvanceBookingDays > 0 && slotTime.After(horizon) {
			slot.Available = false
			slot.Reason = ReasonTooFarAhead
			checked[i] = slot
			continue
		}

		occupiedEnd := slot.StartMinute + durationMinutes
		if conflict := findOverlap(slot.StartMinute, occupiedEnd, therapistBookings, durationFor, policy.BufferMinutes); conflict != nil {
			slot.Available = false
			slot.Reason = ReasonAlreadyBooked
			slot.OccupiedBy = conflict.TherapistID
			checked[i] = slot
			continue
		}
		if conflict := findOverlap(slot.StartMinute, occupiedEnd, clientBookings, durationFor, policy.BufferMinutes); conflict != nil {
			slot.Available = false
			slot.Reason = ReasonClientConflict
			slot.OccupiedBy = conflict.TherapistID
		}
		checked[i] = slot
	}
	return checked
}

func findOverlap(start, end int, bookings []models.Booking, durationFor DurationFunc, buffer int) *models.Booking {
	for i := range bookings {
		b := &bookings[i]
		bStart := b.StartMinute - buffer
		bEnd := b.StartMinute + durationFor(b.ServiceID) + buffer
		if Overlaps(start, end, bStart, bEnd) {
			return b
		}
	}
	return nil
}
