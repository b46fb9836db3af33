// api/util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/supplysight/sentinel/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if user.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if user.Email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if user.Role == "" {
		return fmt.Errorf("user role cannot be empty")
	}
	// Add more validation rules as needed
	return nil
}

func (v *ValidationUtil) ValidatePersona(persona model.Persona) error {
	if persona.Name == "" {
		return fmt.Errorf("persona name cannot be empty")
	}
	for i, raw := range persona.Permissions {
		if raw.Structured != nil {
			if err := v.validatePermission(*raw.Structured); err != nil {
				return fmt.Errorf("permission %d: %w", i, err)
			}
			continue
		}
		if strings.TrimSpace(raw.Shorthand) == "" {
			return fmt.Errorf("permission %d: entry cannot be empty", i)
		}
	}
	return nil
}

func (v *ValidationUtil) validatePermission(permission model.Permission) error {
	if permission.Resource == "" {
		return fmt.Errorf("resource cannot be empty")
	}
	if permission.Level < model.LevelNone || permission.Level > model.LevelAdmin {
		return fmt.Errorf("level %d out of range", int(permission.Level))
	}
	return nil
}
