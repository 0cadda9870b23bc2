package models

import "fmt"

// SlotCadenceMinutes is the fixed step between candidate slot starts.
const SlotCadenceMinutes = 30

// SlotOption is one candidate start time for a booking, tagged with
// whether it can actually be booked and, if not, why.
type SlotOption struct {
	Time        string `json:"time"` // "HH:MM"
	StartMinute int    `json:"startMinute"`
	Available   bool   `json:"available"`
	Reason      string `json:"reason,omitempty"`
	OccupiedBy  string `json:"occupiedBy,omitempty"` // therapist id holding the conflicting booking
}

// MinutesToClock renders minutes-from-midnight as "HH:MM".
func MinutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// DaySchedule is the effective working window for one calendar date
// after the weekly template and custom overrides have been applied.
type DaySchedule struct {
	Available bool     `json:"available"`
	Reason    string   `json:"reason,omitempty"` // set when Available is false
	Hours     Window   `json:"hours"`
	Breaks    []Window `json:"breaks,omitempty"`
}
