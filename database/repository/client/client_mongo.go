package clientRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luisperes28-droid/desperto-app-sub001/database"
	"github.com/luisperes28-droid/desperto-app-sub001/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoClientRepo implements ClientRepository using MongoDB.
type MongoClientRepo struct {
	clientColl       *mongo.Collection
	notificationColl *mongo.Collection
}

// NewMongoClientRepo constructs a new instance of MongoClientRepo.
func NewMongoClientRepo() ClientRepository {
	return &MongoClientRepo{
		clientColl:       database.Collection("clients"),
		notificationColl: database.Collection("notifications"),
	}
}

// GetByID retrieves a client by ID.
func (repo *MongoClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

// GetByEmail retrieves a client by email.
func (repo *MongoClientRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	return repo.findOne(ctx, bson.M{"email": email})
}

func (repo *MongoClientRepo) findOne(ctx context.Context, filter bson.M) (*models.Client, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var client models.Client
	if err := repo.clientColl.FindOne(ctxWithTimeout, filter).Decode(&client); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching client: %w", err)
	}
	return &client, nil
}

// FindOrCreate resolves the client by email, creating it when missing.
func (repo *MongoClientRepo) FindOrCreate(ctx context.Context, client models.Client) (*models.Client, error) {
	existing, err := repo.GetByEmail(ctx, client.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	client.ID = uuid.New().String()
	client.CreatedAt = now
	client.UpdatedAt = now
	if _, err := repo.clientColl.InsertOne(ctxWithTimeout, client); err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}
	return &client, nil
}

// AppendNotification records a notification for the client.
func (repo *MongoClientRepo) AppendNotification(ctx context.Context, clientID string, notification models.Notification) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	notification.ClientID = clientID
	if _, err := repo.notificationColl.InsertOne(ctxWithTimeout, notification); err != nil {
		return fmt.Errorf("error recording notification for client %s: %w", clientID, err)
	}
	return nil
}
