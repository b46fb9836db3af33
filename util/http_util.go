// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	sentinel_errors "github.com/supplysight/sentinel/errors"
	logger "github.com/supplysight/sentinel/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetUserIDFromContext returns the authenticated caller's user ID, set by
// the auth layer upstream of the controllers.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", sentinel_errors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", sentinel_errors.ErrUnauthorized
	}
	return id, nil
}
