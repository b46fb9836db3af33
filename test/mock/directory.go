// test/mock/directory.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/supplysight/sentinel/model"
)

// MockDirectory is a mock implementation of rbac.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockDirectory) GetPersonaPermissions(ctx context.Context, personaID string) ([]model.RawPermission, error) {
	args := m.Called(ctx, personaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawPermission), args.Error(1)
}

func (m *MockDirectory) ListUserIDsByPersona(ctx context.Context, personaID string) ([]string, error) {
	args := m.Called(ctx, personaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
