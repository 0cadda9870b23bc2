package notification

import (
	"context"
	"fmt"
	"time"

	clientRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/client"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService records notifications for clients. Delivery over
// email/SMS is handled by an external collaborator reading the records.
type NotificationService interface {
	Notify(ctx context.Context, clientID string, kind models.NotificationType, title, message string, data map[string]any) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	ClientRepo clientRepo.ClientRepository
}

func NewDefaultNotificationService(clients clientRepo.ClientRepository) (*DefaultNotificationService, error) {
	if clients == nil {
		return nil, fmt.Errorf("notification service initialization error: client repository is nil")
	}
	return &DefaultNotificationService{ClientRepo: clients}, nil
}

func (s *DefaultNotificationService) Notify(
	ctx context.Context,
	clientID string,
	kind models.NotificationType,
	title, message string,
	data map[string]any,
) error {
	n := models.Notification{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Type:      kind,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.ClientRepo.AppendNotification(ctx, clientID, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	utils.GetLogger().Info("notification recorded",
		zap.String("clientID", clientID),
		zap.String("type", string(kind)))
	return nil
}
