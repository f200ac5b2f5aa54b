package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"go.uber.org/zap"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID = "userId"
	ContextEmail  = "email"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware validates the bearer access token and adds its claims to the context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, dto.CodeUnauthorized, "authorization header is required")
			return
		}

		claims, err := authService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, dto.CodeInvalidToken, service.ErrInvalidToken.Error())
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, string(claims.Role))
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RequireUser rejects tokens whose user has been deleted since issuance.
// Must run after AuthMiddleware.
func RequireUser(authService service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		exists, err := authService.UserExists(c.Request.Context(), c.GetString(ContextUserID))
		if err != nil {
			respondServiceError(c, logger, err)
			c.Abort()
			return
		}
		if !exists {
			abortWithError(c, http.StatusUnauthorized, dto.CodeInvalidToken, service.ErrInvalidToken.Error())
			return
		}

		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware
func ClaimsFromContext(c *gin.Context) (*domain.AccessClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.AccessClaims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated user's id
func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}
