// api/middleware/authz.go

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/service"
	"github.com/supplysight/sentinel/util"
)

// RequirePermission guards a route group behind an authorization check.
// The caller's user ID must already be on the request context (set by the
// upstream auth layer); a missing identity or a false evaluation both end
// the request with the same opaque denial.
func RequirePermission(authzService service.IAuthzService, resource string, level model.PermissionLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := util.GetUserIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		decision := authzService.Check(c, service.AccessCheck{
			UserID:   userID,
			Resource: resource,
			Level:    level,
			Context:  evaluationContext(c),
		})

		if !decision.Granted {
			logger.Warn("Access denied",
				zap.String("userID", userID),
				zap.String("resource", resource),
				zap.String("level", level.String()),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// evaluationContext assembles the condition context from request-scoped
// values the auth layer has stashed on the gin context.
func evaluationContext(c *gin.Context) map[string]interface{} {
	evalCtx := make(map[string]interface{})
	if v, exists := c.Get("departmentOnly"); exists {
		evalCtx["departmentOnly"] = v
	}
	if v, exists := c.Get("departmentID"); exists {
		evalCtx["departmentID"] = v
	}
	return evalCtx
}
