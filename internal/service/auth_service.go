package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
	"github.com/prperemyshlev/wellness-portal/pkg/observability"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo    repository.UserRepository
	patientRepo repository.PatientRepository
	sessions    *SessionManager
	jwtManager  *utils.JWTManager
	hasher      *utils.PasswordHasher
	metrics     *observability.AuthMetrics
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	repos *repository.Repositories,
	sessions *SessionManager,
	jwtManager *utils.JWTManager,
	hasher *utils.PasswordHasher,
	metrics *observability.AuthMetrics,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:    repos.User,
		patientRepo: repos.Patient,
		sessions:    sessions,
		jwtManager:  jwtManager,
		hasher:      hasher,
		metrics:     metrics,
		logger:      logger,
	}
}

// Register creates a user, plus an empty patient profile for patients, and opens a session
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := utils.SanitizeEmail(req.Email)
	if email == "" || req.Password == "" || req.Name == "" {
		return nil, ErrMissingFields
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RolePatient
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:          email,
		PasswordDigest: digest,
		Name:           req.Name,
		Role:           role,
		CreatedAt:      s.jwtManager.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	if role == domain.RolePatient {
		if err := s.patientRepo.Create(ctx, domain.NewPatient(user, user.CreatedAt)); err != nil {
			// users and patients are separate collections, so undo the user by hand
			if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
				s.logger.Error("failed to remove user after profile failure", zap.String("user_id", user.ID), zap.Error(delErr))
			}
			return nil, fmt.Errorf("failed to create patient profile for %s: %w", user.ID, err)
		}
	}

	pair, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.Registration(ctx, string(role))
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))

	return newAuthResponse(user, pair), nil
}

// Login authenticates a user. Unknown email and wrong password are the same failure.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil || !s.hasher.Verify(req.Password, user.PasswordDigest) {
		s.metrics.Login(ctx, observability.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.Login(ctx, observability.OutcomeSuccess)
	return newAuthResponse(user, pair), nil
}

// Refresh rotates a refresh token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	pair, err := s.sessions.Rotate(ctx, refreshToken)
	if err != nil {
		s.metrics.Refresh(ctx, observability.OutcomeFailure)
		return nil, err
	}

	s.metrics.Refresh(ctx, observability.OutcomeSuccess)
	return pair, nil
}

func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	n, err := s.sessions.RevokeSession(ctx, userID, refreshToken)
	if err != nil {
		return err
	}
	s.metrics.Revoked(ctx, n)
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	n, err := s.sessions.RevokeAllSessions(ctx, userID)
	if err != nil {
		return err
	}
	s.metrics.Revoked(ctx, n)
	return nil
}

// ForgotPassword overwrites the password, ends every existing session and opens a new one
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*domain.TokenPair, error) {
	email := utils.SanitizeEmail(req.Email)
	if email == "" || req.NewPassword == "" {
		return nil, ErrMissingResetFields
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, digest); err != nil {
		return nil, err
	}

	n, err := s.sessions.RevokeAllSessions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.Revoked(ctx, n)
	s.logger.Info("password reset", zap.String("user_id", user.ID), zap.Int("revoked_sessions", n))

	return s.sessions.Issue(ctx, user)
}

// Me returns the public view of the authenticated user
func (s *authService) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// ValidateAccessToken checks signature, expiry and token type
func (s *authService) ValidateAccessToken(ctx context.Context, token string) (*domain.AccessClaims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) UserExists(ctx context.Context, userID string) (bool, error) {
	_, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}
