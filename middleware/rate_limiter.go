// api/middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/supplysight/sentinel/db"
	logger "github.com/supplysight/sentinel/logging"
)

// RateLimiter throttles callers with a sliding window in Redis. The window
// is keyed by the authenticated user when one is present, otherwise by
// client IP, so a single misbehaving integration cannot starve the rest.
//
// If the limiter itself fails the request goes through: throttling is load
// protection, not an authorization control, and must not become an outage.
func RateLimiter(limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, exists := c.Get("userID"); exists {
			if id, ok := userID.(string); ok && id != "" {
				key = "user:" + id
			}
		}

		allowed, err := db.RateLimit(c, key, limit, per)
		if err != nil {
			logger.Error("Rate limiter unavailable, letting request through",
				zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
