package service

import (
	"context"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	// Logout ends the session identified by refreshToken
	Logout(ctx context.Context, userID, refreshToken string) error
	// LogoutAll ends every session of the user
	LogoutAll(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*domain.TokenPair, error)
	Me(ctx context.Context, userID string) (*domain.PublicUser, error)
	ValidateAccessToken(ctx context.Context, token string) (*domain.AccessClaims, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

// PatientService defines the operations a patient performs on their own records
type PatientService interface {
	GetProfile(ctx context.Context, userID string) (*domain.Patient, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.Patient, error)
	ListGoals(ctx context.Context, userID string) ([]domain.Goal, error)
	SaveGoal(ctx context.Context, userID string, req *dto.SaveGoalRequest) (*domain.Goal, error)
	ListReminders(ctx context.Context, userID string) ([]domain.Reminder, error)
}

// ProviderService defines the operations a provider performs on assigned patients.
// Every method re-checks the caller's role and ownership.
type ProviderService interface {
	ListPatients(ctx context.Context, caller *domain.AccessClaims) ([]dto.PatientWithCompliance, error)
	GetPatientDetails(ctx context.Context, caller *domain.AccessClaims, patientID string) (*dto.PatientDetailsResponse, error)
}

// HealthTipService serves the public daily tip
type HealthTipService interface {
	Today(ctx context.Context) (*domain.HealthTip, error)
}
