// api/service/services.go
package service

import (
	"github.com/supplysight/sentinel/audit"
	"github.com/supplysight/sentinel/dao"
	"github.com/supplysight/sentinel/rbac"
	"github.com/supplysight/sentinel/util"
)

type Services struct {
	Authz   IAuthzService
	User    IUserService
	Persona IPersonaService
}

// InitializeServices takes the DAOs rather than building them so the same
// instances can back both the services and the evaluator's directory.
func InitializeServices(
	userDAO *dao.UserDAO,
	personaDAO *dao.PersonaDAO,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	evaluator *rbac.Evaluator,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	services := &Services{
		Authz:   NewAuthzService(evaluator, auditService),
		User:    NewUserService(userDAO, validationUtil, evaluator, notificationSvc, eventBus),
		Persona: NewPersonaService(personaDAO, validationUtil, evaluator, notificationSvc, eventBus),
	}

	return services, nil
}
