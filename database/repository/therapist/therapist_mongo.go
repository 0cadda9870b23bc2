package therapistRepo

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

// MongoTherapistRepo implements TherapistRepository using MongoDB.
type MongoTherapistRepo struct {
	therapistColl *mongo.Collection
}

// NewMongoTherapistRepo constructs a new instance of MongoTherapistRepo.
func NewMongoTherapistRepo() TherapistRepository {
	return &MongoTherapistRepo{
		therapistColl: database.Collection("therapists"),
	}
}

// GetByID retrieves a therapist document by ID.
func (repo *MongoTherapistRepo) GetByID(ctx context.Context, id string) (*models.Therapist, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var therapist models.Therapist
	if err := repo.therapistColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&therapist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching therapist with id %s: %w", id, err)
	}
	return &therapist, nil
}

// List returns all therapists.
func (repo *MongoTherapistRepo) List(ctx context.Context) ([]models.Therapist, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.therapistColl.Find(ctxWithTimeout, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error fetching therapists: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var therapists []models.Therapist
	for cursor.Next(ctxWithTimeout) {
		var t models.Therapist
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("error decoding therapist: %w", err)
		}
		therapists = append(therapists, t)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return therapists, nil
}

// Create inserts a new therapist document.
func (repo *MongoTherapistRepo) Create(ctx context.Context, therapist *models.Therapist) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.therapistColl.InsertOne(ctxWithTimeout, therapist); err != nil {
		return fmt.Errorf("error creating therapist: %w", err)
	}
	return nil
}

// UpdateAvailability replaces the therapist's availability record.
func (repo *MongoTherapistRepo) UpdateAvailability(ctx context.Context, therapistID string, availability models.TherapistAvailability) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"availability": availability,
		"updated_at":   time.Now(),
	}}
	res, err := repo.therapistColl.UpdateOne(ctxWithTimeout, bson.M{"id": therapistID}, update)
	if err != nil {
		return fmt.Errorf("error updating availability for therapist %s: %w", therapistID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
