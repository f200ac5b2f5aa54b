package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"go.uber.org/zap"
)

// RateLimitMiddleware creates a rate limiting middleware. When Redis is unreachable
// the request is let through and the failure logged.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := rateLimiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rateLimiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, dto.CodeRateLimited, service.ErrRateLimited.Error())
			return
		}

		c.Next()
	}
}

// IPRouteKey limits each client IP separately per route
func IPRouteKey(c *gin.Context) string {
	return fmt.Sprintf("%s:%s", c.FullPath(), c.ClientIP())
}
