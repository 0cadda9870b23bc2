package scheduling

import (
	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// ReasonBreak marks slots whose occupied interval runs into a break window.
const ReasonBreak = "overlaps a break"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Exact adjacency is not an overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// GenerateSlots expands the effective working window into fixed-cadence
// candidate slots. The first slot starts exactly at the window start and
// the last slot start is the largest cadence multiple strictly below the
// window end. A slot is pre-marked unavailable when its occupied interval
// [start, start+duration) intersects any break window. Slots whose
// occupied interval extends past the window end are kept; only break and
// booking overlap gate them.
func GenerateSlots(hours models.Window, breaks []models.Window, durationMinutes int) []models.SlotOption {
	var slots []models.SlotOption
	for start := hours.Start; start < hours.End; start += models.SlotCadenceMinutes {
		slot := models.SlotOption{
			Time:        models.MinutesToClock(start),
			StartMinute: start,
			Available:   true,
		}
		occupiedEnd := start + durationMinutes
		for _, br := range breaks {
			if Overlaps(start, occupiedEnd, br.Start, br.End) {
				slot.Available = false
				slot.Reason = ReasonBreak
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots
}
