package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// PaymentStatus tracks the payment side of a booking, independent of Status.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentOverdue PaymentStatus = "overdue"
)

// Valid reports whether p is one of the known payment states.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentPartial, PaymentOverdue:
		return true
	}
	return false
}

// RescheduleRequest is a pending proposal to move a booking. It does not
// change the booking status until an operator resolves it.
type RescheduleRequest struct {
	NewDate        string    `bson:"new_date" json:"newDate"` // "YYYY-MM-DD"
	NewStartMinute int       `bson:"new_start_minute" json:"newStartMinute"`
	Reason         string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RequestedAt    time.Time `bson:"requested_at" json:"requestedAt"`
}

// Booking represents one appointment of a client with a therapist.
// Duration is derived from the referenced service, never stored here.
// Bookings are never physically deleted; cancellation is a status change.
type Booking struct {
	ID              string             `bson:"id" json:"id"`
	ClientID        string             `bson:"client_id" json:"clientId"`
	ServiceID       string             `bson:"service_id" json:"serviceId"`
	TherapistID     string             `bson:"therapist_id" json:"therapistId"`
	Date            string             `bson:"date" json:"date"`                // "YYYY-MM-DD" in the practice calendar
	StartMinute     int                `bson:"start_minute" json:"startMinute"` // minutes from midnight (e.g. 540 for 9:00)
	Status          BookingStatus      `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	PaymentTxnID    string             `bson:"payment_txn_id,omitempty" json:"paymentTxnId,omitempty"` // provider transaction id, idempotency key
	DiscountApplied float64            `bson:"discount_applied,omitempty" json:"discountApplied,omitempty"`
	CouponCode      string             `bson:"coupon_code,omitempty" json:"couponCode,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ReminderSent    bool               `bson:"reminder_sent" json:"reminderSent"`
	Reschedule      *RescheduleRequest `bson:"reschedule,omitempty" json:"reschedule,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// BookingInput is the commit payload assembled by the handler layer.
type BookingInput struct {
	ClientName   string `json:"clientName"`
	ClientEmail  string `json:"clientEmail" binding:"required"`
	ClientPhone  string `json:"clientPhone,omitempty"`
	ServiceID    string `json:"serviceId" binding:"required"`
	TherapistID  string `json:"therapistId" binding:"required"`
	Date         string `json:"date" binding:"required"` // "YYYY-MM-DD"
	StartMinute  int    `json:"startMinute"`
	Notes        string `json:"notes,omitempty"`
	CouponCode   string `json:"couponCode,omitempty"`
	PaymentProof string `json:"paymentProof,omitempty"` // provider payment-intent id
}

// BookingUpdate carries an operator mutation; nil fields are left untouched.
type BookingUpdate struct {
	Status      *BookingStatus `json:"status,omitempty"`
	TherapistID *string        `json:"therapistId,omitempty"`
}
