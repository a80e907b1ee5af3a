package middleware

import (
	"net/http"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware limits requests per client IP. Limiter errors fail open.
func RateLimitMiddleware(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			logger.Error("rate limiter unavailable", zap.String("client_ip", ip), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
