package scheduling

import (
	"time"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// Day-level unavailability reasons surfaced to the slot query.
const (
	ReasonNotWorkingDay = "therapist does not work on this day"
	ReasonDayOff        = "therapist is not available on this date"
	ReasonDateBlocked   = "date is blocked"
)

// ResolveDay merges the weekly working-hours template with any
// custom-schedule override for the given calendar date and returns the
// effective working window plus the break windows to apply. Blocked dates
// are a separate day-level gate, checked by the caller via IsDateBlocked.
func ResolveDay(date time.Time, av models.TherapistAvailability) models.DaySchedule {
	if !av.WorksOn(date.Weekday()) {
		return models.DaySchedule{Available: false, Reason: ReasonNotWorkingDay}
	}

	dateStr := date.Format("2006-01-02")
	for _, custom := range av.CustomSchedule {
		if custom.Date != dateStr {
			continue
		}
		if !custom.Available {
			return models.DaySchedule{Available: false, Reason: ReasonDayOff}
		}
		if custom.CustomHours != nil {
			return models.DaySchedule{
				Available: true,
				Hours:     *custom.CustomHours,
				Breaks:    av.Breaks,
			}
		}
		return models.DaySchedule{
			Available: true,
			Hours:     av.WorkingHours,
			Breaks:    av.Breaks,
		}
	}

	return models.DaySchedule{
		Available: true,
		Hours:     av.WorkingHours,
		Breaks:    av.Breaks,
	}
}

// IsDateBlocked reports whether the date is on the therapist's fully
// blocked list.
func IsDateBlocked(av models.TherapistAvailability, date time.Time) bool {
	dateStr := date.Format("2006-01-02")
	for _, blocked := range av.BlockedDates {
		if blocked == dateStr {
			return true
		}
	}
	return false
}
