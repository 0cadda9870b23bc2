package models

import "time"

// Window is a [Start, End) interval in minutes from midnight.
type Window struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// CustomDay overrides the weekly template for a single calendar date.
type CustomDay struct {
	Date        string  `bson:"date" json:"date"` // "YYYY-MM-DD"
	Available   bool    `bson:"available" json:"available"`
	CustomHours *Window `bson:"custom_hours,omitempty" json:"customHours,omitempty"`
}

// TherapistAvailability holds the recurring and ad-hoc working-hour rules
// for one therapist. WorkingHours.Start must be strictly before End, and
// break windows lie within working hours without overlapping each other.
type TherapistAvailability struct {
	WorkingDays           []time.Weekday `bson:"working_days" json:"workingDays"`
	WorkingHours          Window         `bson:"working_hours" json:"workingHours"`
	Breaks                []Window       `bson:"breaks,omitempty" json:"breaks,omitempty"`
	BlockedDates          []string       `bson:"blocked_dates,omitempty" json:"blockedDates,omitempty"` // fully unavailable dates
	CustomSchedule        []CustomDay    `bson:"custom_schedule,omitempty" json:"customSchedule,omitempty"`
	BufferTimeMinutes     int            `bson:"buffer_time_minutes,omitempty" json:"bufferTimeMinutes,omitempty"`
	MinAdvanceNoticeHours int            `bson:"min_advance_notice_hours,omitempty" json:"minAdvanceNoticeHours,omitempty"`
	MaxAdvanceBookingDays int            `bson:"max_advance_booking_days,omitempty" json:"maxAdvanceBookingDays,omitempty"`
}

// WorksOn reports whether the weekly template includes the given weekday.
func (a TherapistAvailability) WorksOn(day time.Weekday) bool {
	for _, d := range a.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// Therapist is a practitioner who owns exactly one availability record.
type Therapist struct {
	ID           string                `bson:"id" json:"id"`
	Name         string                `bson:"name" json:"name"`
	Email        string                `bson:"email" json:"email"`
	Availability TherapistAvailability `bson:"availability" json:"availability"`
	CreatedAt    time.Time             `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time             `bson:"updated_at" json:"updatedAt"`
}
