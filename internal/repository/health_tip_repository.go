package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

type healthTipRepository struct {
	tips collection[domain.HealthTip]
}

// NewHealthTipRepository creates a new health tip repository
func NewHealthTipRepository(store docstore.Store) HealthTipRepository {
	return &healthTipRepository{tips: newCollection[domain.HealthTip](store, CollectionHealthTips)}
}

func (r *healthTipRepository) Create(ctx context.Context, tip *domain.HealthTip) error {
	if tip.ID == "" {
		tip.ID = uuid.New().String()
	}

	err := r.tips.update(ctx, func(tips []domain.HealthTip) ([]domain.HealthTip, error) {
		return append(tips, *tip), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create health tip: %w", err)
	}

	return nil
}

// List returns tips in stored order
func (r *healthTipRepository) List(ctx context.Context) ([]domain.HealthTip, error) {
	return r.tips.all(ctx)
}
