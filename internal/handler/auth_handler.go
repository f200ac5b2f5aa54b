package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 409 {object} dto.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req, service.ErrMissingFields) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusCreated, dto.CodeUserRegistered, response)
}

// Login handles user login
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, service.ErrMissingCredentials) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeLoginSuccess, response)
}

// Refresh exchanges a refresh token for a new pair. The presented token stops working.
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh request"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, &req, service.ErrMissingRefreshToken) {
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeTokenRefreshed, pair)
}

// Logout ends the session of the given refresh token, or every session of the caller
// when the body names none
// @Summary Logout user
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LogoutRequest false "Session to end"
// @Success 200 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	var req dto.LogoutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	var err error
	if req.RefreshToken != "" {
		err = h.authService.Logout(c.Request.Context(), userID, req.RefreshToken)
	} else {
		err = h.authService.LogoutAll(c.Request.Context(), userID)
	}
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeLogoutSuccess, dto.MessageData{Message: "Logged out successfully"})
}

// LogoutAll ends every session of the caller
// @Summary Logout from every device
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeLogoutSuccess, dto.MessageData{Message: "Logged out from all sessions"})
}

// ForgotPassword resets the password of an account and opens a fresh session
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Reset request"
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 404 {object} dto.Envelope
// @Router /auth/forget-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req, service.ErrMissingResetFields) {
		return
	}

	pair, err := h.authService.ForgotPassword(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodePasswordResetSuccess, pair)
}

// GetMe handles getting current user profile
// @Summary Get current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Envelope
// @Failure 401 {object} dto.Envelope
// @Failure 404 {object} dto.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeUserProfileRetrieved, dto.UserResponse{User: *user})
}
