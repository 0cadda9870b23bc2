package bookingRepo

import (
	"context"
	"fmt"

	"github.com/luisperes28-droid/desperto-app-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateIfSlotFree inserts the booking inside a transaction that first
// re-reads every non-cancelled booking of the same therapist and the same
// client on that date and verifies the occupied intervals do not overlap.
// Existing intervals are widened by bufferMinutes on both sides before the
// comparison. Racing commits on the same window resolve to one winner; the
// loser gets ErrSlotTaken and nothing is written.
func (repo *MongoBookingRepo) CreateIfSlotFree(
	ctx context.Context,
	booking *models.Booking,
	durationFor DurationFunc,
	bufferMinutes int,
	excludeBookingID string,
) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	newStart := booking.StartMinute
	newEnd := booking.StartMinute + durationFor(booking.ServiceID)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"date":   booking.Date,
			"status": bson.M{"$ne": models.BookingCancelled},
			"$or": []bson.M{
				{"therapist_id": booking.TherapistID},
				{"client_id": booking.ClientID},
			},
		}
		cursor, err := repo.bookingColl.Find(sc, filter)
		if err != nil {
			return fmt.Errorf("overlap re-check failed: %w", err)
		}
		defer cursor.Close(sc)

		for cursor.Next(sc) {
			var existing models.Booking
			if err := cursor.Decode(&existing); err != nil {
				return fmt.Errorf("error decoding booking: %w", err)
			}
			if existing.ID == excludeBookingID {
				continue
			}
			exStart := existing.StartMinute - bufferMinutes
			exEnd := existing.StartMinute + durationFor(existing.ServiceID) + bufferMinutes
			if newStart < exEnd && newEnd > exStart {
				return ErrSlotTaken
			}
		}
		if err := cursor.Err(); err != nil {
			return fmt.Errorf("cursor error: %w", err)
		}

		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}
