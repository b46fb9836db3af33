// api/controller/persona_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sentinel_errors "github.com/supplysight/sentinel/errors"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/service"
	"github.com/supplysight/sentinel/util"
	helper_util "github.com/supplysight/sentinel/util/helper"
)

type PersonaController struct {
	personaService service.IPersonaService
}

func NewPersonaController(personaService service.IPersonaService) *PersonaController {
	return &PersonaController{
		personaService: personaService,
	}
}

// RegisterRoutes registers the API routes for personas
func (pc *PersonaController) RegisterRoutes(r *gin.RouterGroup) {
	personas := r.Group("/personas")
	{
		personas.POST("", pc.CreatePersona)
		personas.PUT("/:id", pc.UpdatePersona)
		personas.DELETE("/:id", pc.DeletePersona)
		personas.GET("/:id", pc.GetPersona)
		personas.GET("", pc.ListPersonas)
	}
}

// CreatePersona endpoint
func (pc *PersonaController) CreatePersona(c *gin.Context) {
	var persona model.Persona
	if err := c.ShouldBindJSON(&persona); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid persona data", sentinel_errors.ErrInvalidPersonaData)
		return
	}
	creatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", sentinel_errors.ErrUnauthorized)
		return
	}

	createdPersona, err := pc.personaService.CreatePersona(c, persona, creatorID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel_errors.ErrPersonaConflict):
			util.RespondWithError(c, http.StatusConflict, "Persona already exists", err)
		case errors.Is(err, sentinel_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create persona", sentinel_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdPersona)
}

// UpdatePersona endpoint
func (pc *PersonaController) UpdatePersona(c *gin.Context) {
	personaID := c.Param("id")
	var persona model.Persona
	if err := c.ShouldBindJSON(&persona); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid persona data", err)
		return
	}
	persona.ID = personaID
	updaterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedPersona, err := pc.personaService.UpdatePersona(c, persona, updaterID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel_errors.ErrPersonaNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Persona not found", err)
		case errors.Is(err, sentinel_errors.ErrPersonaConflict):
			util.RespondWithError(c, http.StatusConflict, "Persona is being modified", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update persona", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedPersona)
}

// DeletePersona endpoint
func (pc *PersonaController) DeletePersona(c *gin.Context) {
	personaID := c.Param("id")
	deleterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := pc.personaService.DeletePersona(c, personaID, deleterID); err != nil {
		if errors.Is(err, sentinel_errors.ErrPersonaNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Persona not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete persona", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPersona endpoint
func (pc *PersonaController) GetPersona(c *gin.Context) {
	personaID := c.Param("id")

	persona, err := pc.personaService.GetPersona(c, personaID)
	if err != nil {
		if errors.Is(err, sentinel_errors.ErrPersonaNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Persona not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve persona", err)
		}
		return
	}

	c.JSON(http.StatusOK, persona)
}

// ListPersonas endpoint
func (pc *PersonaController) ListPersonas(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	personas, err := pc.personaService.ListPersonas(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list personas", err)
		return
	}

	c.JSON(http.StatusOK, personas)
}
