package clientRepo

import (
	"context"
	"errors"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// ErrNotFound is returned when no client matches the given key.
var ErrNotFound = errors.New("client not found")

// ClientRepository defines data access for clients. Email is the identity
// key used to resolve the requesting client.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	// FindOrCreate resolves the client by email, creating the record when
	// none exists yet.
	FindOrCreate(ctx context.Context, client models.Client) (*models.Client, error)
	AppendNotification(ctx context.Context, clientID string, notification models.Notification) error
}
