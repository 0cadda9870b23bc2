package serviceRepo

import (
	"context"
	"errors"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// ErrNotFound is returned when no service matches the given id.
var ErrNotFound = errors.New("service not found")

// ServiceRepository defines data access for the service catalogue.
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
	Create(ctx context.Context, service *models.Service) error
}
