package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

type providerRepository struct {
	providers collection[domain.Provider]
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(store docstore.Store) ProviderRepository {
	return &providerRepository{providers: newCollection[domain.Provider](store, CollectionProviders)}
}

func (r *providerRepository) Create(ctx context.Context, provider *domain.Provider) error {
	if provider.ID == "" {
		provider.ID = uuid.New().String()
	}
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = time.Now().UTC()
	}
	if provider.AssignedPatients == nil {
		provider.AssignedPatients = []string{}
	}

	err := r.providers.update(ctx, func(providers []domain.Provider) ([]domain.Provider, error) {
		for _, p := range providers {
			if p.ID == provider.ID || p.UserID == provider.UserID {
				return nil, fmt.Errorf("provider %s: %w", provider.ID, ErrDuplicateID)
			}
		}
		return append(providers, *provider), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	return nil
}

// GetByUserID retrieves the provider profile owned by a user
func (r *providerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Provider, error) {
	providers, err := r.providers.all(ctx)
	if err != nil {
		return nil, err
	}

	for i := range providers {
		if providers[i].UserID == userID {
			return &providers[i], nil
		}
	}
	return nil, ErrNotFound
}

// AssignPatient adds a patient to the provider's assignedPatients; assigning twice is a no-op
func (r *providerRepository) AssignPatient(ctx context.Context, providerID, patientID string) error {
	err := r.providers.update(ctx, func(providers []domain.Provider) ([]domain.Provider, error) {
		for i := range providers {
			if providers[i].ID != providerID {
				continue
			}
			if !providers[i].IsAssigned(patientID) {
				providers[i].AssignedPatients = append(providers[i].AssignedPatients, patientID)
			}
			return providers, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("failed to assign patient: %w", err)
	}

	return nil
}
