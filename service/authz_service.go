// api/service/authz_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/supplysight/sentinel/audit"
	"github.com/supplysight/sentinel/cache"
	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/rbac"
)

// AccessCheck is a single authorization question.
type AccessCheck struct {
	UserID   string                 `json:"user_id" binding:"required"`
	Resource string                 `json:"resource" binding:"required"`
	Level    model.PermissionLevel  `json:"level"`
	Context  map[string]interface{} `json:"context"`
}

// AccessDecision is the uniform answer. Granted=false carries no reason the
// caller may act on; denial is deliberately opaque.
type AccessDecision struct {
	Granted bool `json:"granted"`
}

// IAuthzService defines the interface for authorization operations
type IAuthzService interface {
	Check(ctx context.Context, check AccessCheck) AccessDecision
	GetUserPermissions(ctx context.Context, userID string) []model.Permission
	UserHasRole(ctx context.Context, userID, role string) bool
	UserRequiresMFA(ctx context.Context, userID string) bool
	Invalidate(userID string)
	CacheStats() cache.Stats
}

// AuthzService fronts the evaluator and records every decision on the
// audit trail.
type AuthzService struct {
	evaluator    *rbac.Evaluator
	auditService audit.Service
}

var _ IAuthzService = &AuthzService{}

func NewAuthzService(evaluator *rbac.Evaluator, auditService audit.Service) *AuthzService {
	return &AuthzService{
		evaluator:    evaluator,
		auditService: auditService,
	}
}

// Check evaluates an access request. Levels default to READ when omitted.
func (s *AuthzService) Check(ctx context.Context, check AccessCheck) AccessDecision {
	level := check.Level
	if level == model.LevelNone {
		level = model.LevelRead
	}

	granted := s.evaluator.HasPermission(ctx, check.UserID, check.Resource, level, check.Context)

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        check.UserID,
		Action:        "CHECK_ACCESS",
		Resource:      check.Resource,
		Level:         level.String(),
		AccessGranted: granted,
	}
	if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
		logger.Warn("Failed to record access decision",
			zap.Error(err),
			zap.String("userID", check.UserID),
			zap.String("resource", check.Resource))
	}

	return AccessDecision{Granted: granted}
}

func (s *AuthzService) GetUserPermissions(ctx context.Context, userID string) []model.Permission {
	return s.evaluator.GetUserPermissions(ctx, userID)
}

func (s *AuthzService) UserHasRole(ctx context.Context, userID, role string) bool {
	return s.evaluator.UserHasRole(ctx, userID, role)
}

func (s *AuthzService) UserRequiresMFA(ctx context.Context, userID string) bool {
	return s.evaluator.UserRequiresMFA(ctx, userID)
}

func (s *AuthzService) Invalidate(userID string) {
	s.evaluator.InvalidateCache(userID)
}

func (s *AuthzService) CacheStats() cache.Stats {
	return s.evaluator.CacheStats()
}
