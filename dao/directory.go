// api/dao/directory.go
package dao

import (
	"context"

	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/rbac"
)

// Directory adapts the user and persona DAOs to the evaluator's directory
// contract.
type Directory struct {
	userDAO    *UserDAO
	personaDAO *PersonaDAO
}

var _ rbac.Directory = &Directory{}

func NewDirectory(userDAO *UserDAO, personaDAO *PersonaDAO) *Directory {
	return &Directory{userDAO: userDAO, personaDAO: personaDAO}
}

func (d *Directory) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return d.userDAO.GetUser(ctx, userID)
}

func (d *Directory) GetPersonaPermissions(ctx context.Context, personaID string) ([]model.RawPermission, error) {
	return d.personaDAO.GetPersonaPermissions(ctx, personaID)
}

func (d *Directory) ListUserIDsByPersona(ctx context.Context, personaID string) ([]string, error) {
	return d.userDAO.ListUserIDsByPersona(ctx, personaID)
}
