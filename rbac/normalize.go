// api/rbac/normalize.go
package rbac

import (
	"strings"

	"github.com/supplysight/sentinel/model"
)

// ConditionDepartmentOnly restricts a grant to requests whose evaluation
// context carries departmentOnly=true.
const ConditionDepartmentOnly = "departmentOnly"

// NormalizePermissions converts raw persona entries into structured
// Permissions. The legacy string shorthand is resolved here, at the
// ingestion boundary, so evaluation only ever operates on structured data.
func NormalizePermissions(raw []model.RawPermission) []model.Permission {
	perms := make([]model.Permission, 0, len(raw))
	for _, r := range raw {
		if r.Structured != nil {
			perms = append(perms, *r.Structured)
			continue
		}
		if r.Shorthand == "" {
			continue
		}
		perms = append(perms, parseShorthand(r.Shorthand))
	}
	return perms
}

// parseShorthand resolves the "resource.level" string format. The trailing
// dot segment is a level only when it names one ("procurement.write" grants
// WRITE on "procurement"); otherwise the whole string is the resource and
// the level defaults to READ ("procurement.orders" reads as READ on
// "procurement.orders").
func parseShorthand(s string) model.Permission {
	if idx := strings.LastIndex(s, "."); idx > 0 {
		if level, ok := model.ParseLevel(s[idx+1:]); ok {
			return model.Permission{Resource: s[:idx], Level: level}
		}
	}
	return model.Permission{Resource: s, Level: model.LevelRead}
}

// RolePermissions synthesizes the wildcard grants implied by a coarse
// role: admin and superuser hold unconditional wildcard ADMIN, managers
// hold wildcard WRITE scoped to their own department.
func RolePermissions(role string) []model.Permission {
	switch role {
	case model.RoleAdmin, model.RoleSuperuser:
		return []model.Permission{{
			Resource: model.WildcardResource,
			Level:    model.LevelAdmin,
		}}
	case model.RoleManager:
		return []model.Permission{{
			Resource:   model.WildcardResource,
			Level:      model.LevelWrite,
			Conditions: map[string]interface{}{ConditionDepartmentOnly: true},
		}}
	default:
		return nil
	}
}
