package middleware

import (
	"net/http"
	"strconv"

	"pr-readiness-api/internal/cache"

	"github.com/gin-gonic/gin"
)

// RateLimit guards expensive endpoints with per-client-IP admission control.
// A denied request gets a 429 with an explicit Retry-After, never a bare
// rejection.
func RateLimit(limiter *cache.FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.Admit(c.ClientIP())
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
