// api/service/persona_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/supplysight/sentinel/dao"
	"github.com/supplysight/sentinel/db"
	sentinel_errors "github.com/supplysight/sentinel/errors"
	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/rbac"
	"github.com/supplysight/sentinel/util"
)

// IPersonaService defines the interface for persona operations
type IPersonaService interface {
	CreatePersona(ctx context.Context, persona model.Persona, creatorID string) (*model.Persona, error)
	UpdatePersona(ctx context.Context, persona model.Persona, updaterID string) (*model.Persona, error)
	DeletePersona(ctx context.Context, personaID string, deleterID string) error
	GetPersona(ctx context.Context, personaID string) (*model.Persona, error)
	ListPersonas(ctx context.Context, limit int, offset int) ([]*model.Persona, error)
}

// PersonaService handles business logic for persona operations
type PersonaService struct {
	personaDAO      *dao.PersonaDAO
	validationUtil  *util.ValidationUtil
	evaluator       *rbac.Evaluator
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IPersonaService = &PersonaService{}

// NewPersonaService creates a new instance of PersonaService
func NewPersonaService(personaDAO *dao.PersonaDAO, validationUtil *util.ValidationUtil, evaluator *rbac.Evaluator, notificationSvc *util.NotificationService, eventBus *util.EventBus) *PersonaService {
	return &PersonaService{
		personaDAO:      personaDAO,
		validationUtil:  validationUtil,
		evaluator:       evaluator,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

// CreatePersona handles the creation of a new persona
func (s *PersonaService) CreatePersona(ctx context.Context, persona model.Persona, creatorID string) (*model.Persona, error) {
	if err := s.validationUtil.ValidatePersona(persona); err != nil {
		return nil, fmt.Errorf("invalid persona: %w", err)
	}

	personaID, err := s.personaDAO.CreatePersona(ctx, persona)
	if err != nil {
		logger.Error("Error creating persona", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	persona.ID = personaID

	if err := s.notificationSvc.NotifyPersonaChange(ctx, "created", persona); err != nil {
		logger.Warn("Failed to send persona creation notification", zap.Error(err), zap.String("personaID", personaID))
	}

	logger.Info("Persona created successfully", zap.String("personaID", personaID), zap.String("creatorID", creatorID))
	return &persona, nil
}

// UpdatePersona handles updates to an existing persona. Rewrites are
// serialized with a distributed lock, and the cached permission sets of
// every user on the persona are dropped before the call returns.
func (s *PersonaService) UpdatePersona(ctx context.Context, persona model.Persona, updaterID string) (*model.Persona, error) {
	if err := s.validationUtil.ValidatePersona(persona); err != nil {
		return nil, fmt.Errorf("invalid persona: %w", err)
	}

	lockKey := "persona:" + persona.ID
	locked, err := db.LockResource(ctx, lockKey, 10*time.Second)
	if err != nil {
		logger.Warn("Persona lock unavailable, proceeding unlocked", zap.Error(err), zap.String("personaID", persona.ID))
	} else if !locked {
		return nil, sentinel_errors.ErrPersonaConflict
	} else {
		defer func() {
			if err := db.UnlockResource(ctx, lockKey); err != nil {
				logger.Warn("Failed to release persona lock", zap.Error(err), zap.String("personaID", persona.ID))
			}
		}()
	}

	updatedPersona, err := s.personaDAO.UpdatePersona(ctx, persona)
	if err != nil {
		logger.Error("Error updating persona", zap.Error(err), zap.String("personaID", persona.ID), zap.String("updaterID", updaterID))
		return nil, err
	}

	s.evaluator.InvalidatePersona(ctx, persona.ID)

	if err := s.notificationSvc.NotifyPersonaChange(ctx, "updated", *updatedPersona); err != nil {
		logger.Warn("Failed to send persona update notification", zap.Error(err), zap.String("personaID", persona.ID))
	}

	s.eventBus.Publish(ctx, util.EventPersonaUpdated, persona.ID)

	logger.Info("Persona updated successfully", zap.String("personaID", persona.ID), zap.String("updaterID", updaterID))
	return updatedPersona, nil
}

// DeletePersona handles the deletion of a persona
func (s *PersonaService) DeletePersona(ctx context.Context, personaID string, deleterID string) error {
	// Invalidate before the node disappears; afterward the affected users
	// can no longer be resolved through the persona.
	s.evaluator.InvalidatePersona(ctx, personaID)

	err := s.personaDAO.DeletePersona(ctx, personaID)
	if err != nil {
		logger.Error("Error deleting persona", zap.Error(err), zap.String("personaID", personaID), zap.String("deleterID", deleterID))
		return fmt.Errorf("failed to delete persona: %w", err)
	}

	if err := s.notificationSvc.NotifyPersonaChange(ctx, "deleted", model.Persona{ID: personaID}); err != nil {
		logger.Warn("Failed to send persona deletion notification", zap.Error(err), zap.String("personaID", personaID))
	}

	s.eventBus.Publish(ctx, util.EventPersonaDeleted, personaID)

	logger.Info("Persona deleted successfully", zap.String("personaID", personaID), zap.String("deleterID", deleterID))
	return nil
}

// GetPersona retrieves a persona by ID
func (s *PersonaService) GetPersona(ctx context.Context, personaID string) (*model.Persona, error) {
	persona, err := s.personaDAO.GetPersona(ctx, personaID)
	if err != nil {
		if err == sentinel_errors.ErrPersonaNotFound {
			return nil, sentinel_errors.ErrPersonaNotFound
		}
		logger.Error("Error retrieving persona", zap.Error(err), zap.String("personaID", personaID))
		return nil, sentinel_errors.ErrInternalServer
	}
	return persona, nil
}

// ListPersonas retrieves all personas, possibly with pagination
func (s *PersonaService) ListPersonas(ctx context.Context, limit int, offset int) ([]*model.Persona, error) {
	personas, err := s.personaDAO.ListPersonas(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing personas", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	return personas, nil
}
