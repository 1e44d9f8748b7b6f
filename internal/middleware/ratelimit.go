package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/internal/utils"
)

// RateLimit throttles a route per authenticated user, or per client IP for
// anonymous callers. A nil limiter disables throttling.
func RateLimit(limiter *services.RateLimitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		identifierType, identifier := "ip", utils.GetRealIP(c)
		if principal, ok := GetPrincipal(c); ok {
			identifierType, identifier = "user", strconv.FormatInt(principal.UserID, 10)
		}
		route := c.Request.Method + " " + c.FullPath()

		remaining, err := limiter.Check(c.Request.Context(), identifierType, identifier, route)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))

		var limited *services.RateLimitError
		if errors.As(err, &limited) {
			retryAfter := limited.RetryAfterSeconds(time.Now())
			secs, _ := strconv.Atoi(retryAfter)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too_many_requests",
				"message":     limited.Message,
				"retry_after": secs,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Next()
	}
}
