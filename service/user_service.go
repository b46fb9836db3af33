// api/service/user_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/supplysight/sentinel/dao"
	sentinel_errors "github.com/supplysight/sentinel/errors"
	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/rbac"
	"github.com/supplysight/sentinel/util"
)

// IUserService defines the interface for user operations
type IUserService interface {
	CreateUser(ctx context.Context, user model.User, creatorID string) (*model.User, error)
	UpdateUser(ctx context.Context, user model.User, updaterID string) (*model.User, error)
	DeleteUser(ctx context.Context, userID string, deleterID string) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error)
}

// UserService handles business logic for user operations
type UserService struct {
	userDAO         *dao.UserDAO
	validationUtil  *util.ValidationUtil
	evaluator       *rbac.Evaluator
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IUserService = &UserService{}

// NewUserService creates a new instance of UserService
func NewUserService(userDAO *dao.UserDAO, validationUtil *util.ValidationUtil, evaluator *rbac.Evaluator, notificationSvc *util.NotificationService, eventBus *util.EventBus) *UserService {
	return &UserService{
		userDAO:         userDAO,
		validationUtil:  validationUtil,
		evaluator:       evaluator,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

// CreateUser handles the creation of a new user
func (s *UserService) CreateUser(ctx context.Context, user model.User, creatorID string) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	userID, err := s.userDAO.CreateUser(ctx, user)
	if err != nil {
		logger.Error("Error creating user", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	user.ID = userID

	if err := s.notificationSvc.NotifyUserChange(ctx, "created", user); err != nil {
		logger.Warn("Failed to send user creation notification", zap.Error(err), zap.String("userID", userID))
	}

	logger.Info("User created successfully", zap.String("userID", userID), zap.String("creatorID", creatorID))
	return &user, nil
}

// UpdateUser handles updates to an existing user. A persona or role change
// invalidates the user's cached permission set synchronously, before the
// call returns, so no caller can observe a grant derived from the old
// assignment beyond this point.
func (s *UserService) UpdateUser(ctx context.Context, user model.User, updaterID string) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	updatedUser, err := s.userDAO.UpdateUser(ctx, user)
	if err != nil {
		logger.Error("Error updating user", zap.Error(err), zap.String("userID", user.ID), zap.String("updaterID", updaterID))
		return nil, err
	}

	s.evaluator.InvalidateCache(user.ID)

	if err := s.notificationSvc.NotifyUserChange(ctx, "updated", *updatedUser); err != nil {
		logger.Warn("Failed to send user update notification", zap.Error(err), zap.String("userID", user.ID))
	}

	// Echo the change for out-of-band listeners
	s.eventBus.Publish(ctx, util.EventUserUpdated, user.ID)

	logger.Info("User updated successfully", zap.String("userID", user.ID), zap.String("updaterID", updaterID))
	return updatedUser, nil
}

// DeleteUser handles the deletion of a user
func (s *UserService) DeleteUser(ctx context.Context, userID string, deleterID string) error {
	err := s.userDAO.DeleteUser(ctx, userID)
	if err != nil {
		logger.Error("Error deleting user", zap.Error(err), zap.String("userID", userID), zap.String("deleterID", deleterID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.evaluator.InvalidateCache(userID)

	if err := s.notificationSvc.NotifyUserChange(ctx, "deleted", model.User{ID: userID}); err != nil {
		logger.Warn("Failed to send user deletion notification", zap.Error(err), zap.String("userID", userID))
	}

	s.eventBus.Publish(ctx, util.EventUserDeleted, userID)

	logger.Info("User deleted successfully", zap.String("userID", userID), zap.String("deleterID", deleterID))
	return nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		if err == sentinel_errors.ErrUserNotFound {
			return nil, sentinel_errors.ErrUserNotFound
		}
		logger.Error("Error retrieving user", zap.Error(err), zap.String("userID", userID))
		return nil, sentinel_errors.ErrInternalServer
	}
	return user, nil
}

// ListUsers retrieves all users, possibly with pagination
func (s *UserService) ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error) {
	users, err := s.userDAO.ListUsers(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing users", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
