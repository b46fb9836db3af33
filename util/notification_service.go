// api/util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyUserChange(ctx context.Context, changeType string, user model.User) error {
	// In a real implementation, you might send this to a message queue or external notification service
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New user created",
			zap.String("userID", user.ID),
			zap.String("username", user.Username))
	case "updated":
		logger.Info("NOTIFICATION: User updated",
			zap.String("userID", user.ID),
			zap.String("role", user.Role),
			zap.String("personaID", user.PersonaID))
	case "deleted":
		logger.Info("NOTIFICATION: User deleted",
			zap.String("userID", user.ID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

func (n *NotificationService) NotifyPersonaChange(ctx context.Context, changeType string, persona model.Persona) error {
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New persona created",
			zap.String("personaID", persona.ID),
			zap.String("personaName", persona.Name))
	case "updated":
		logger.Info("NOTIFICATION: Persona updated",
			zap.String("personaID", persona.ID),
			zap.Int("permissions", len(persona.Permissions)))
	case "deleted":
		logger.Info("NOTIFICATION: Persona deleted",
			zap.String("personaID", persona.ID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}
