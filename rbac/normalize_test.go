package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplysight/sentinel/model"
)

func TestParseShorthand(t *testing.T) {
	tests := []struct {
		in       string
		resource string
		level    model.PermissionLevel
	}{
		{"procurement.write", "procurement", model.LevelWrite},
		{"finance.admin", "finance", model.LevelAdmin},
		{"inventory.read", "inventory", model.LevelRead},
		// No trailing level token: whole string is the resource, READ by default.
		{"procurement", "procurement", model.LevelRead},
		{"procurement.orders", "procurement.orders", model.LevelRead},
		{"procurement.orders.write", "procurement.orders", model.LevelWrite},
	}

	for _, tt := range tests {
		p := parseShorthand(tt.in)
		assert.Equal(t, tt.resource, p.Resource, tt.in)
		assert.Equal(t, tt.level, p.Level, tt.in)
		assert.Empty(t, p.Conditions, tt.in)
	}
}

func TestNormalizePermissions(t *testing.T) {
	structured := model.Permission{
		Resource:   "hr.records",
		Level:      model.LevelWrite,
		Conditions: map[string]interface{}{ConditionDepartmentOnly: true},
	}

	raw := []model.RawPermission{
		{Shorthand: "procurement.write"},
		{Structured: &structured},
		{Shorthand: ""},
	}

	perms := NormalizePermissions(raw)
	require.Len(t, perms, 2)
	assert.Equal(t, model.Permission{Resource: "procurement", Level: model.LevelWrite}, perms[0])
	assert.Equal(t, structured, perms[1])
}

func TestNormalizePermissionsEmpty(t *testing.T) {
	assert.Empty(t, NormalizePermissions(nil))
	assert.Empty(t, NormalizePermissions([]model.RawPermission{}))
}

func TestRolePermissions(t *testing.T) {
	for _, role := range []string{model.RoleAdmin, model.RoleSuperuser} {
		perms := RolePermissions(role)
		require.Len(t, perms, 1, role)
		assert.True(t, perms[0].IsWildcard(), role)
		assert.Equal(t, model.LevelAdmin, perms[0].Level, role)
		assert.Empty(t, perms[0].Conditions, role)
	}

	perms := RolePermissions(model.RoleManager)
	require.Len(t, perms, 1)
	assert.True(t, perms[0].IsWildcard())
	assert.Equal(t, model.LevelWrite, perms[0].Level)
	assert.Equal(t, true, perms[0].Conditions[ConditionDepartmentOnly])

	assert.Empty(t, RolePermissions(model.RoleEmployee))
	assert.Empty(t, RolePermissions(""))
}
