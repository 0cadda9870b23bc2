package booking

import "fmt"

// ValidationError reports malformed input: missing or unparseable date,
// time, or contact fields. Recoverable, nothing is mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SlotConflictError reports an overlap detected at selection or commit
// time. Racing commits are expected to produce exactly one of these for
// the loser.
type SlotConflictError struct {
	Reason     string
	OccupiedBy string // therapist holding the conflicting booking, if known
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot conflict: %s", e.Reason)
}

// PolicyViolationError reports an advance-notice or max-advance breach, a
// blocked date, or a non-working day.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation: %s", e.Reason)
}

// PaymentRequiredError reports that a supplied payment proof could not be
// confirmed by the provider.
type PaymentRequiredError struct {
	Message string
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("payment required: %s", e.Message)
}

// PaymentError reports a provider rejection, timeout, or invalid amount.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment error: %s", e.Message)
}

// StorageError wraps a persistence-layer failure during commit. Booking
// state is left unchanged when it occurs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
