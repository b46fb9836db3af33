// test/mock/authz.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/supplysight/sentinel/cache"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/service"
)

// MockAuthzService is a mock implementation of service.IAuthzService
type MockAuthzService struct {
	mock.Mock
}

func (m *MockAuthzService) Check(ctx context.Context, check service.AccessCheck) service.AccessDecision {
	args := m.Called(ctx, check)
	return args.Get(0).(service.AccessDecision)
}

func (m *MockAuthzService) GetUserPermissions(ctx context.Context, userID string) []model.Permission {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Permission)
}

func (m *MockAuthzService) UserHasRole(ctx context.Context, userID, role string) bool {
	args := m.Called(ctx, userID, role)
	return args.Bool(0)
}

func (m *MockAuthzService) UserRequiresMFA(ctx context.Context, userID string) bool {
	args := m.Called(ctx, userID)
	return args.Bool(0)
}

func (m *MockAuthzService) Invalidate(userID string) {
	m.Called(userID)
}

func (m *MockAuthzService) CacheStats() cache.Stats {
	args := m.Called()
	return args.Get(0).(cache.Stats)
}
