// api/controller/controllers.go
package controller

import "github.com/supplysight/sentinel/service"

type Controllers struct {
	Authz   *AuthzController
	User    *UserController
	Persona *PersonaController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Authz:   NewAuthzController(services.Authz),
		User:    NewUserController(services.User),
		Persona: NewPersonaController(services.Persona),
	}
}
