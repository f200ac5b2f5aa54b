package service

import "errors"

// Validation errors
var (
	ErrMissingFields       = errors.New("email, password, and name are required")
	ErrMissingCredentials  = errors.New("email and password are required")
	ErrMissingRefreshToken = errors.New("refresh token is required")
	ErrMissingResetFields  = errors.New("email and new password are required")
	ErrMissingGoalFields   = errors.New("type and target are required")
	ErrInvalidRole         = errors.New("role must be patient or provider")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
)

// Authentication errors. Their messages never reveal which check failed.
var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// Authorization, lookup and conflict errors
var (
	ErrForbidden         = errors.New("access denied")
	ErrUserExists        = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrPatientNotFound   = errors.New("patient profile not found")
	ErrProviderNotFound  = errors.New("provider profile not found")
	ErrHealthTipNotFound = errors.New("no health tips available")
	ErrRateLimited       = errors.New("rate limit exceeded")
)
