package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/service"
)

// AuditRecorder accepts audit entries without blocking the request
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditLogEntry) bool
}

// AuditMiddleware records every request that carries a verifiable bearer access token,
// whether or not the route itself requires authentication
func AuditMiddleware(recorder AuditRecorder, authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		userID, ok := UserIDFromContext(c)
		if !ok {
			token, present := bearerToken(c)
			if !present {
				return
			}
			claims, err := authService.ValidateAccessToken(c.Request.Context(), token)
			if err != nil {
				return
			}
			userID = claims.UserID
		}

		recorder.Record(c.Request.Context(), domain.AuditLogEntry{
			UserID:    userID,
			Action:    c.Request.Method,
			Resource:  c.Request.URL.Path,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
	}
}
