package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
)

// SessionManager owns the lifecycle of refresh token records. Records hold the SHA-256 of the
// token, never the token itself.
type SessionManager struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *utils.JWTManager
}

// NewSessionManager creates a new session manager
func NewSessionManager(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, jwtManager *utils.JWTManager) *SessionManager {
	return &SessionManager{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Issue signs a new token pair for user and persists the refresh record
func (m *SessionManager) Issue(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	pair, record, err := m.sign(user)
	if err != nil {
		return nil, err
	}

	if err := m.tokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return pair, nil
}

// Rotate exchanges a refresh token for a new pair. The old record is removed and the new one
// inserted in a single store write, so a token can be exchanged at most once.
func (m *SessionManager) Rotate(ctx context.Context, presented string) (*domain.TokenPair, error) {
	claims, err := m.jwtManager.ValidateRefreshToken(presented)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	oldHash := utils.HashToken(presented)
	record, err := m.tokenRepo.GetByTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if record.UserID != claims.UserID {
		return nil, ErrRefreshTokenNotFound
	}

	user, err := m.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	pair, next, err := m.sign(user)
	if err != nil {
		return nil, err
	}

	if err := m.tokenRepo.Rotate(ctx, user.ID, oldHash, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	return pair, nil
}

// RevokeSession ends the single session identified by refreshToken. Unknown tokens are ignored.
func (m *SessionManager) RevokeSession(ctx context.Context, userID, refreshToken string) (int, error) {
	return m.tokenRepo.DeleteByTokenHash(ctx, userID, utils.HashToken(refreshToken))
}

// RevokeAllSessions ends every session of the user
func (m *SessionManager) RevokeAllSessions(ctx context.Context, userID string) (int, error) {
	return m.tokenRepo.DeleteByUserID(ctx, userID)
}

// PurgeExpired drops records whose refresh token can no longer verify
func (m *SessionManager) PurgeExpired(ctx context.Context) (int, error) {
	return m.tokenRepo.DeleteExpired(ctx, m.jwtManager.Now())
}

func (m *SessionManager) sign(user *domain.User) (*domain.TokenPair, *domain.RefreshToken, error) {
	accessToken, err := m.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, claims, err := m.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashToken(refreshToken),
		CreatedAt: m.jwtManager.Now().UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, record, nil
}
