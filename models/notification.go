package models

import "time"

// NotificationType names the single notification emitted by a booking
// mutation. When several fields change in one commit, only the highest
// priority type is sent: cancelled, then confirmed, then reassigned.
type NotificationType string

const (
	NotifyBookingCancelled  NotificationType = "booking_cancelled"
	NotifyBookingConfirmed  NotificationType = "booking_confirmed"
	NotifyTherapistChanged  NotificationType = "therapist_changed"
	NotifyBookingReminder   NotificationType = "booking_reminder"
	NotifyPaymentConfirmed  NotificationType = "payment_confirmed"
	NotifyRescheduleOutcome NotificationType = "reschedule_outcome"
)

// Notification is one message recorded for a client.
type Notification struct {
	ID        string           `bson:"id" json:"id"`
	ClientID  string           `bson:"client_id" json:"clientId"`
	Type      NotificationType `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Data      map[string]any   `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool             `bson:"read" json:"read"`
	CreatedAt time.Time        `bson:"created_at" json:"createdAt"`
}
