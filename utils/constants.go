// File: utils/constants.go
package utils

import "time"

// SlotSessionPrefix is the prefix used for Redis slot-selection session keys.
const SlotSessionPrefix = "slotsession:"

// SlotSessionTTL is the time-to-live for a slot-selection session.
const SlotSessionTTL = 10 * time.Minute
