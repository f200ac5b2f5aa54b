package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
)

// ErrInvalidToken covers every verification failure: malformed, bad signature, expired or wrong type
var ErrInvalidToken = errors.New("invalid token")

type accessTokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type refreshTokenClaims struct {
	UserID string `json:"userId"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager manages JWT token operations
type JWTManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	now                func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
		now:                time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens
func (j *JWTManager) WithClock(now func() time.Time) *JWTManager {
	j.now = now
	return j
}

// GenerateAccessToken generates a new access token
func (j *JWTManager) GenerateAccessToken(userID, email string, role domain.Role) (string, error) {
	now := j.now()
	claims := accessTokenClaims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		Type:   domain.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenExpiry)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken generates a new refresh token along with the claims it carries
func (j *JWTManager) GenerateRefreshToken(userID string) (string, *domain.RefreshClaims, error) {
	now := j.now()
	expiresAt := now.Add(j.refreshTokenExpiry)
	claims := refreshTokenClaims{
		UserID: userID,
		Type:   domain.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, &domain.RefreshClaims{
		UserID:    userID,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ValidateAccessToken verifies signature, expiry and token type of an access token
func (j *JWTManager) ValidateAccessToken(tokenString string) (*domain.AccessClaims, error) {
	var claims accessTokenClaims
	if err := j.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if claims.Type != domain.TokenTypeAccess || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &domain.AccessClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      domain.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ValidateRefreshToken verifies signature, expiry and token type of a refresh token
func (j *JWTManager) ValidateRefreshToken(tokenString string) (*domain.RefreshClaims, error) {
	var claims refreshTokenClaims
	if err := j.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if claims.Type != domain.TokenTypeRefresh || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &domain.RefreshClaims{
		UserID:    claims.UserID,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (j *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return ErrInvalidToken
	}
	return nil
}

// Now returns the current time of the manager's clock
func (j *JWTManager) Now() time.Time {
	return j.now()
}

// AccessTokenExpiry returns the access token lifetime
func (j *JWTManager) AccessTokenExpiry() time.Duration {
	return j.accessTokenExpiry
}

// RefreshTokenExpiry returns the refresh token lifetime
func (j *JWTManager) RefreshTokenExpiry() time.Duration {
	return j.refreshTokenExpiry
}

// HashToken returns the hex SHA-256 digest under which refresh tokens are stored
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
