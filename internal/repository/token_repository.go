package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	tokens collection[domain.RefreshToken]
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(store docstore.Store) TokenRepository {
	return &tokenRepository{tokens: newCollection[domain.RefreshToken](store, CollectionTokens)}
}

func prepareToken(token *domain.RefreshToken) {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	token.Type = domain.TokenTypeRefresh
}

// Create stores a new refresh token record
func (r *tokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	prepareToken(token)

	err := r.tokens.update(ctx, func(tokens []domain.RefreshToken) ([]domain.RefreshToken, error) {
		return append(tokens, *token), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetByTokenHash retrieves a refresh token record by the digest of its token
func (r *tokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	tokens, err := r.tokens.all(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tokens {
		if tokens[i].TokenHash == tokenHash {
			return &tokens[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetByUserID retrieves every live session record of a user
func (r *tokenRepository) GetByUserID(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	tokens, err := r.tokens.all(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RefreshToken, 0)
	for _, t := range tokens {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *tokenRepository) Rotate(ctx context.Context, userID, oldHash string, next *domain.RefreshToken) error {
	prepareToken(next)

	err := r.tokens.update(ctx, func(tokens []domain.RefreshToken) ([]domain.RefreshToken, error) {
		kept := tokens[:0]
		found := false
		for _, t := range tokens {
			if !found && t.UserID == userID && t.TokenHash == oldHash {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		if !found {
			return nil, ErrNotFound
		}
		return append(kept, *next), nil
	})
	if err != nil {
		return fmt.Errorf("failed to rotate token: %w", err)
	}

	return nil
}

// DeleteByTokenHash removes the matching session of a user. Zero deletions is not an error.
func (r *tokenRepository) DeleteByTokenHash(ctx context.Context, userID, tokenHash string) (int, error) {
	return r.deleteWhere(ctx, func(t domain.RefreshToken) bool {
		return t.UserID == userID && t.TokenHash == tokenHash
	})
}

// DeleteByUserID removes every session of a user
func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	return r.deleteWhere(ctx, func(t domain.RefreshToken) bool {
		return t.UserID == userID
	})
}

// DeleteExpired removes records past their expiry
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return r.deleteWhere(ctx, func(t domain.RefreshToken) bool {
		return t.IsExpired(now)
	})
}

func (r *tokenRepository) deleteWhere(ctx context.Context, match func(domain.RefreshToken) bool) (int, error) {
	var deleted int
	err := r.tokens.update(ctx, func(tokens []domain.RefreshToken) ([]domain.RefreshToken, error) {
		deleted = 0
		kept := tokens[:0]
		for _, t := range tokens {
			if match(t) {
				deleted++
				continue
			}
			kept = append(kept, t)
		}
		return kept, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens: %w", err)
	}

	return deleted, nil
}
