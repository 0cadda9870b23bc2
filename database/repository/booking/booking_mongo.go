package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luisperes28-droid/desperto-app-sub001/database"
	"github.com/luisperes28-droid/desperto-app-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	return &MongoBookingRepo{
		bookingColl: database.Collection("bookings"),
	}
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// ListByTherapistAndDate returns all non-cancelled bookings of the therapist on the date.
func (repo *MongoBookingRepo) ListByTherapistAndDate(ctx context.Context, therapistID, date string) ([]models.Booking, error) {
	filter := bson.M{
		"therapist_id": therapistID,
		"date":         date,
		"status":       bson.M{"$ne": models.BookingCancelled},
	}
	return repo.list(ctx, filter)
}

// ListByClientAndDate returns all non-cancelled bookings of the client on the date.
func (repo *MongoBookingRepo) ListByClientAndDate(ctx context.Context, clientID, date string) ([]models.Booking, error) {
	filter := bson.M{
		"client_id": clientID,
		"date":      date,
		"status":    bson.M{"$ne": models.BookingCancelled},
	}
	return repo.list(ctx, filter)
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.bookingColl.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	for cursor.Next(ctxWithTimeout) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// Update replaces the stored booking document.
func (repo *MongoBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.bookingColl.ReplaceOne(ctxWithTimeout, bson.M{"id": booking.ID}, booking)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", booking.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaymentOutcome applies a payment result, guarded so that redelivery of
// the same provider transaction cannot double-apply effects.
func (repo *MongoBookingRepo) SetPaymentOutcome(ctx context.Context, bookingID, txnID string, payment models.PaymentStatus, status models.BookingStatus) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": bookingID,
		"$or": []bson.M{
			{"payment_txn_id": ""},
			{"payment_txn_id": bson.M{"$exists": false}},
			{"payment_txn_id": txnID},
		},
	}
	update := bson.M{"$set": bson.M{
		"payment_txn_id": txnID,
		"payment_status": payment,
		"status":         status,
		"updated_at":     time.Now(),
	}}
	res, err := repo.bookingColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("error applying payment outcome to booking %s: %w", bookingID, err)
	}
	return res.MatchedCount > 0, nil
}

// ListDueReminders returns confirmed bookings on the given dates without a reminder.
func (repo *MongoBookingRepo) ListDueReminders(ctx context.Context, dates []string) ([]models.Booking, error) {
	filter := bson.M{
		"date":          bson.M{"$in": dates},
		"status":        models.BookingConfirmed,
		"reminder_sent": false,
	}
	return repo.list(ctx, filter)
}

// MarkReminderSent flips the reminder flag for a booking.
func (repo *MongoBookingRepo) MarkReminderSent(ctx context.Context, bookingID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": time.Now()}}
	res, err := repo.bookingColl.UpdateOne(ctxWithTimeout, bson.M{"id": bookingID}, update)
	if err != nil {
		return fmt.Errorf("error marking reminder sent for booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
