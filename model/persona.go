// api/model/persona.go
package model

import "time"

// Persona is a named bundle of permissions assigned to a user, the source
// of truth for a user's fine-grained grants. The evaluator never reads a
// persona directly; it consumes the normalized permission set derived from
// one.
type Persona struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions []RawPermission `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
