package rbac_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/supplysight/sentinel/cache"
	"github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/rbac"
	"github.com/supplysight/sentinel/test/mock"
)

var anyCtx = tmock.Anything

func TestMain(m *testing.M) {
	logging.InitTestLogger()
	os.Exit(m.Run())
}

func newEvaluator(t *testing.T, dir rbac.Directory) *rbac.Evaluator {
	t.Helper()
	c := cache.New(time.Minute, 0)
	t.Cleanup(c.Close)
	return rbac.NewEvaluator(dir, c, time.Minute)
}

func employee(id string) *model.User {
	return &model.User{ID: id, PersonaID: "p-" + id, Role: model.RoleEmployee}
}

func TestHasPermissionEmployee(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").
		Return([]model.RawPermission{{Shorthand: "procurement.write"}}, nil)

	e := newEvaluator(t, dir)
	ctx := context.Background()

	tests := []struct {
		name     string
		resource string
		level    model.PermissionLevel
		want     bool
	}{
		{"exact resource at held level", "procurement", model.LevelWrite, true},
		{"lower level than held", "procurement", model.LevelRead, true},
		{"higher level than held", "procurement", model.LevelAdmin, false},
		{"sub-resource of held prefix", "procurement.orders", model.LevelWrite, true},
		{"unrelated resource", "finance", model.LevelRead, false},
		{"prefix of a longer name is not a match", "procurements", model.LevelRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.HasPermission(ctx, "u1", tt.resource, tt.level, nil))
		})
	}
}

func TestHasPermissionAdminWildcard(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "root").
		Return(&model.User{ID: "root", Role: model.RoleAdmin}, nil)

	e := newEvaluator(t, dir)
	ctx := context.Background()

	assert.True(t, e.HasPermission(ctx, "root", "procurement", model.LevelAdmin, nil))
	assert.True(t, e.HasPermission(ctx, "root", "anything.at.all", model.LevelWrite, nil))

	// No persona assigned, so the persona lookup must be skipped entirely.
	dir.AssertNotCalled(t, "GetPersonaPermissions", anyCtx, "")
}

func TestHasPermissionManagerScoped(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "mgr").
		Return(&model.User{ID: "mgr", Role: model.RoleManager}, nil)

	e := newEvaluator(t, dir)
	ctx := context.Background()

	scoped := map[string]interface{}{rbac.ConditionDepartmentOnly: true}

	assert.True(t, e.HasPermission(ctx, "mgr", "procurement", model.LevelWrite, scoped))
	assert.True(t, e.HasPermission(ctx, "mgr", "inventory", model.LevelRead, scoped))

	// The department condition is part of the grant; without it in the
	// evaluation context the wildcard must not apply.
	assert.False(t, e.HasPermission(ctx, "mgr", "procurement", model.LevelWrite, nil))
	assert.False(t, e.HasPermission(ctx, "mgr", "procurement", model.LevelWrite,
		map[string]interface{}{rbac.ConditionDepartmentOnly: false}))

	assert.False(t, e.HasPermission(ctx, "mgr", "procurement", model.LevelAdmin, scoped))
}

func TestGetUserPermissionsCachesLookups(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").
		Return([]model.RawPermission{{Shorthand: "procurement.write"}}, nil)

	e := newEvaluator(t, dir)
	ctx := context.Background()

	first := e.GetUserPermissions(ctx, "u1")
	second := e.GetUserPermissions(ctx, "u1")

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	dir.AssertNumberOfCalls(t, "GetUser", 1)
	dir.AssertNumberOfCalls(t, "GetPersonaPermissions", 1)
}

func TestGetUserPermissionsFailClosed(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "ghost").Return(nil, errors.New("not found"))

	e := newEvaluator(t, dir)
	ctx := context.Background()

	assert.Nil(t, e.GetUserPermissions(ctx, "ghost"))
	assert.False(t, e.HasPermission(ctx, "ghost", "procurement", model.LevelRead, nil))

	// Failures are not cached: the next call retries the directory.
	e.GetUserPermissions(ctx, "ghost")
	dir.AssertNumberOfCalls(t, "GetUser", 3)
}

func TestGetUserPermissionsPersonaFailure(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").Return(nil, errors.New("timeout"))

	e := newEvaluator(t, dir)

	assert.Nil(t, e.GetUserPermissions(context.Background(), "u1"))
}

func TestGetUserPermissionsEmptyUserID(t *testing.T) {
	dir := new(mock.MockDirectory)
	e := newEvaluator(t, dir)

	assert.Nil(t, e.GetUserPermissions(context.Background(), ""))
	dir.AssertNotCalled(t, "GetUser", anyCtx, "")
}

func TestInvalidateCacheForcesReload(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").
		Return([]model.RawPermission{{Shorthand: "procurement.read"}}, nil).Once()
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").
		Return([]model.RawPermission{{Shorthand: "procurement.admin"}}, nil)

	e := newEvaluator(t, dir)
	ctx := context.Background()

	assert.False(t, e.HasPermission(ctx, "u1", "procurement", model.LevelAdmin, nil))

	e.InvalidateCache("u1")

	assert.True(t, e.HasPermission(ctx, "u1", "procurement", model.LevelAdmin, nil))
	dir.AssertNumberOfCalls(t, "GetPersonaPermissions", 2)
}

func TestInvalidatePersonaFansOut(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetUser", anyCtx, "u2").Return(&model.User{ID: "u2", PersonaID: "p-u1", Role: model.RoleEmployee}, nil)
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").
		Return([]model.RawPermission{{Shorthand: "procurement.read"}}, nil)
	dir.On("ListUserIDsByPersona", anyCtx, "p-u1").Return([]string{"u1", "u2"}, nil)

	e := newEvaluator(t, dir)
	ctx := context.Background()

	e.GetUserPermissions(ctx, "u1")
	e.GetUserPermissions(ctx, "u2")
	assert.Equal(t, 2, e.CacheStats().Size)

	e.InvalidatePersona(ctx, "p-u1")
	assert.Equal(t, 0, e.CacheStats().Size)
}

func TestInvalidatePersonaListFailure(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").
		Return([]model.RawPermission{{Shorthand: "procurement.read"}}, nil)
	dir.On("ListUserIDsByPersona", anyCtx, "p-u1").Return(nil, errors.New("unavailable"))

	e := newEvaluator(t, dir)
	ctx := context.Background()

	e.GetUserPermissions(ctx, "u1")
	e.InvalidatePersona(ctx, "p-u1")

	// Listing failed, so existing entries stay until their TTL expires.
	assert.Equal(t, 1, e.CacheStats().Size)
}

func TestUserHasRole(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "mgr").
		Return(&model.User{ID: "mgr", Role: model.RoleManager}, nil)
	dir.On("GetUser", anyCtx, "ghost").Return(nil, errors.New("not found"))

	e := newEvaluator(t, dir)
	ctx := context.Background()

	assert.True(t, e.UserHasRole(ctx, "mgr", model.RoleManager))
	assert.False(t, e.UserHasRole(ctx, "mgr", model.RoleAdmin))
	assert.False(t, e.UserHasRole(ctx, "ghost", model.RoleManager))
}

func TestUserRequiresMFA(t *testing.T) {
	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "root").
		Return(&model.User{ID: "root", Role: model.RoleAdmin}, nil)
	dir.On("GetUser", anyCtx, "sec").
		Return(&model.User{ID: "sec", Role: model.RoleSecurityAdmin}, nil)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetUser", anyCtx, "ghost").Return(nil, errors.New("not found"))

	e := newEvaluator(t, dir)
	ctx := context.Background()

	assert.True(t, e.UserRequiresMFA(ctx, "root"))
	assert.True(t, e.UserRequiresMFA(ctx, "sec"))
	assert.False(t, e.UserRequiresMFA(ctx, "u1"))
	assert.False(t, e.UserRequiresMFA(ctx, "ghost"))
}

func TestHasPermissionConditionConjunction(t *testing.T) {
	grant := model.Permission{
		Resource: "hr.records",
		Level:    model.LevelWrite,
		Conditions: map[string]interface{}{
			rbac.ConditionDepartmentOnly: true,
			"region":                     "emea",
		},
	}

	dir := new(mock.MockDirectory)
	dir.On("GetUser", anyCtx, "u1").Return(employee("u1"), nil)
	dir.On("GetPersonaPermissions", anyCtx, "p-u1").
		Return([]model.RawPermission{{Structured: &grant}}, nil)

	e := newEvaluator(t, dir)
	ctx := context.Background()

	full := map[string]interface{}{rbac.ConditionDepartmentOnly: true, "region": "emea"}
	partial := map[string]interface{}{rbac.ConditionDepartmentOnly: true}
	mismatch := map[string]interface{}{rbac.ConditionDepartmentOnly: true, "region": "apac"}

	assert.True(t, e.HasPermission(ctx, "u1", "hr.records", model.LevelWrite, full))
	assert.False(t, e.HasPermission(ctx, "u1", "hr.records", model.LevelWrite, partial))
	assert.False(t, e.HasPermission(ctx, "u1", "hr.records", model.LevelWrite, mismatch))
}
