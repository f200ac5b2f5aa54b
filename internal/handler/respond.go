package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"go.uber.org/zap"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings translates service errors into (HTTP status, messageCode)
var errorMappings = []errorMapping{
	{service.ErrMissingFields, http.StatusBadRequest, dto.CodeMissingFields},
	{service.ErrMissingResetFields, http.StatusBadRequest, dto.CodeMissingFields},
	{service.ErrMissingGoalFields, http.StatusBadRequest, dto.CodeMissingFields},
	{service.ErrMissingCredentials, http.StatusBadRequest, dto.CodeMissingCredentials},
	{service.ErrMissingRefreshToken, http.StatusBadRequest, dto.CodeMissingRefreshToken},
	{service.ErrInvalidRole, http.StatusBadRequest, dto.CodeInvalidRole},
	{service.ErrInvalidDate, http.StatusBadRequest, dto.CodeInvalidDate},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, dto.CodeInvalidCredentials},
	{service.ErrInvalidToken, http.StatusUnauthorized, dto.CodeInvalidToken},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, dto.CodeInvalidRefreshToken},
	{service.ErrRefreshTokenNotFound, http.StatusUnauthorized, dto.CodeRefreshTokenNotFound},
	{service.ErrForbidden, http.StatusForbidden, dto.CodeForbidden},
	{service.ErrUserNotFound, http.StatusNotFound, dto.CodeUserNotFound},
	{service.ErrPatientNotFound, http.StatusNotFound, dto.CodePatientNotFound},
	{service.ErrProviderNotFound, http.StatusNotFound, dto.CodeProviderNotFound},
	{service.ErrHealthTipNotFound, http.StatusNotFound, dto.CodeHealthTipNotFound},
	{service.ErrUserExists, http.StatusConflict, dto.CodeUserExists},
	{service.ErrRateLimited, http.StatusTooManyRequests, dto.CodeRateLimited},
}

func lookupError(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return errorMapping{}, false
}

func respondSuccess(c *gin.Context, status int, code string, data interface{}) {
	c.JSON(status, dto.NewEnvelope(dto.StatusSuccess, code, data))
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, dto.NewEnvelope(dto.StatusError, code, dto.MessageData{
		Message: message,
		Details: details,
	}))
}

func abortWithError(c *gin.Context, status int, code, message string) {
	respondError(c, status, code, message, nil)
	c.Abort()
}

// respondServiceError writes the envelope for err. Errors without a mapping are
// logged with their cause and reported as INTERNAL_ERROR.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	if m, ok := lookupError(err); ok {
		respondError(c, m.status, m.code, m.err.Error(), nil)
		return
	}

	logger.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	respondError(c, http.StatusInternalServerError, dto.CodeInternalError, "internal server error", nil)
}

// NotFound answers requests that match no route
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, dto.CodeRouteNotFound, "route not found", nil)
}
