// api/rbac/directory.go
package rbac

import (
	"context"

	"github.com/supplysight/sentinel/model"
)

// Directory is the external user/persona store the evaluator reads from.
// It is the source of truth for permission sets; the evaluator only ever
// holds a derived, cached view. The DAO layer provides the production
// implementation over Neo4j; tests substitute their own.
type Directory interface {
	// GetUser resolves a user's persona assignment and coarse role.
	GetUser(ctx context.Context, userID string) (*model.User, error)

	// GetPersonaPermissions returns the persona's declared permission
	// entries, still in raw (string or structured) form.
	GetPersonaPermissions(ctx context.Context, personaID string) ([]model.RawPermission, error)

	// ListUserIDsByPersona returns the IDs of every user assigned to the
	// persona. Used to fan out cache invalidation on persona changes.
	ListUserIDsByPersona(ctx context.Context, personaID string) ([]string, error)
}
