package therapistRepo

import (
	"context"
	"errors"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// ErrNotFound is returned when no therapist matches the given id.
var ErrNotFound = errors.New("therapist not found")

// TherapistRepository defines data access for therapists and their
// availability records.
type TherapistRepository interface {
	GetByID(ctx context.Context, id string) (*models.Therapist, error)
	List(ctx context.Context) ([]models.Therapist, error)
	Create(ctx context.Context, therapist *models.Therapist) error
	UpdateAvailability(ctx context.Context, therapistID string, availability models.TherapistAvailability) error
}
