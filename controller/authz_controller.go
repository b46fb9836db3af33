// api/controller/authz_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sentinel_errors "github.com/supplysight/sentinel/errors"
	"github.com/supplysight/sentinel/service"
	"github.com/supplysight/sentinel/util"
)

type AuthzController struct {
	authzService service.IAuthzService
}

func NewAuthzController(authzService service.IAuthzService) *AuthzController {
	return &AuthzController{
		authzService: authzService,
	}
}

// RegisterRoutes registers the API routes for authorization decisions
func (ac *AuthzController) RegisterRoutes(r *gin.RouterGroup) {
	authz := r.Group("/authz")
	{
		authz.POST("/check", ac.Check)
		authz.GET("/users/:id/permissions", ac.GetUserPermissions)
		authz.GET("/users/:id/mfa", ac.GetUserMFA)
		authz.POST("/users/:id/invalidate", ac.Invalidate)
		authz.GET("/cache/stats", ac.CacheStats)
	}
}

// Check endpoint: answers a single access question. The response carries
// the decision only; a denial never explains itself.
func (ac *AuthzController) Check(c *gin.Context) {
	var check service.AccessCheck
	if err := c.ShouldBindJSON(&check); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access check", err)
		return
	}

	decision := ac.authzService.Check(c, check)
	c.JSON(http.StatusOK, decision)
}

// GetUserPermissions endpoint: returns the user's normalized permission
// set. An unknown or failing user resolves to an empty list, not an error.
func (ac *AuthzController) GetUserPermissions(c *gin.Context) {
	userID := c.Param("id")
	permissions := ac.authzService.GetUserPermissions(c, userID)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "permissions": permissions})
}

// GetUserMFA endpoint: reports whether the user's role mandates MFA.
func (ac *AuthzController) GetUserMFA(c *gin.Context) {
	userID := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"requires_mfa": ac.authzService.UserRequiresMFA(c, userID),
	})
}

// Invalidate endpoint: drops the user's cached permission set. Called by
// external systems after out-of-band persona/role mutations.
func (ac *AuthzController) Invalidate(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "Missing user ID", sentinel_errors.ErrInvalidUserData)
		return
	}
	ac.authzService.Invalidate(userID)
	c.Status(http.StatusNoContent)
}

// CacheStats endpoint: cache diagnostics, not correctness-bearing.
func (ac *AuthzController) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, ac.authzService.CacheStats())
}
