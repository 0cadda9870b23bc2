package serviceRepo

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

// MongoServiceRepo implements ServiceRepository using MongoDB.
type MongoServiceRepo struct {
	serviceColl *mongo.Collection
}

// NewMongoServiceRepo constructs a new instance of MongoServiceRepo.
func NewMongoServiceRepo() ServiceRepository {
	return &MongoServiceRepo{
		serviceColl: database.Collection("services"),
	}
}

// GetByID retrieves a service by its ID.
func (repo *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var service models.Service
	if err := repo.serviceColl.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&service); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching service with id %s: %w", id, err)
	}
	return &service, nil
}

// List returns all services in the catalogue.
func (repo *MongoServiceRepo) List(ctx context.Context) ([]models.Service, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.serviceColl.Find(ctxWithTimeout, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error fetching services: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var services []models.Service
	for cursor.Next(ctxWithTimeout) {
		var s models.Service
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("error decoding service: %w", err)
		}
		services = append(services, s)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return services, nil
}

// Create inserts a new service document.
func (repo *MongoServiceRepo) Create(ctx context.Context, service *models.Service) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.serviceColl.InsertOne(ctxWithTimeout, service); err != nil {
		return fmt.Errorf("error creating service: %w", err)
	}
	return nil
}
