// api/middleware/logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	logger "github.com/supplysight/sentinel/logging"
)

// RequestLogger tags every request with an ID and logs its outcome once
// the handler chain finishes. Denials (401/403) log at Warn so operators
// can spot misbehaving callers without raising the log level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("requestID", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if userID, exists := c.Get("userID"); exists {
			if id, ok := userID.(string); ok {
				fields = append(fields, zap.String("userID", id))
			}
		}

		switch {
		case len(c.Errors) > 0:
			fields = append(fields, zap.String("errors", c.Errors.String()))
			logger.Error("Request failed", fields...)
		case c.Writer.Status() == 401 || c.Writer.Status() == 403:
			logger.Warn("Request denied", fields...)
		default:
			logger.Info("Request processed", fields...)
		}
	}
}
