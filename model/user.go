package model

import "time"

// Coarse roles recognized by the evaluator. Personas carry the fine-grained
// permission lists; the role only drives synthesized wildcard grants and
// MFA policy.
const (
	RoleAdmin           = "admin"
	RoleSuperuser       = "superuser"
	RoleManager         = "manager"
	RoleEmployee        = "employee"
	RoleSecurityAdmin   = "security_admin"
	RoleComplianceAdmin = "compliance_admin"
)

type User struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PersonaID    string            `json:"persona_id"`
	Role         string            `json:"role"`
	DepartmentID string            `json:"department_id,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type UserSearchCriteria struct {
	ID           string `json:"id,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	PersonaID    string `json:"persona_id,omitempty"`
	Role         string `json:"role,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}
