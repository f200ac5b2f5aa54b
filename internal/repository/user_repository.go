package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

// userRepository implements UserRepository interface
type userRepository struct {
	users collection[domain.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{users: newCollection[domain.User](store, CollectionUsers)}
}

// Create inserts a user; the email uniqueness check runs inside the same collection write
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err := r.users.update(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if u.Email == user.Email {
				return nil, fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
			}
			if u.ID == user.ID {
				return nil, fmt.Errorf("user %s: %w", user.ID, ErrDuplicateID)
			}
		}
		return append(users, *user), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by exact email match
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.users.all(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.users.all(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// UpdatePassword overwrites the stored password digest
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordDigest string) error {
	err := r.users.update(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == userID {
				users[i].PasswordDigest = passwordDigest
				return users, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// Delete removes a user. Deleting a missing user is ErrNotFound.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	err := r.users.update(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == id {
				return append(users[:i], users[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
