package models

import "time"

// Service is one bookable therapy service. DurationMinutes drives the
// occupied interval of every booking that references the service.
type Service struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	Price           float64   `bson:"price" json:"price"`
	Currency        string    `bson:"currency" json:"currency"`
	Active          bool      `bson:"active" json:"active"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
}
