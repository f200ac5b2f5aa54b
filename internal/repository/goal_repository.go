package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

type goalRepository struct {
	goals collection[domain.Goal]
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(store docstore.Store) GoalRepository {
	return &goalRepository{goals: newCollection[domain.Goal](store, CollectionGoals)}
}

func (r *goalRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.Goal, error) {
	byPatient, err := r.ListByPatients(ctx, []string{patientID})
	if err != nil {
		return nil, err
	}
	if goals := byPatient[patientID]; goals != nil {
		return goals, nil
	}
	return []domain.Goal{}, nil
}

func (r *goalRepository) ListByPatients(ctx context.Context, patientIDs []string) (map[string][]domain.Goal, error) {
	goals, err := r.goals.all(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(patientIDs))
	for _, id := range patientIDs {
		wanted[id] = true
	}

	result := make(map[string][]domain.Goal, len(patientIDs))
	for _, g := range goals {
		if wanted[g.PatientID] {
			result[g.PatientID] = append(result[g.PatientID], g)
		}
	}
	return result, nil
}

func (r *goalRepository) Upsert(ctx context.Context, key GoalKey, apply func(g *domain.Goal, created bool)) (*domain.Goal, error) {
	var saved domain.Goal
	err := r.goals.update(ctx, func(goals []domain.Goal) ([]domain.Goal, error) {
		now := time.Now().UTC()
		for i := range goals {
			g := &goals[i]
			if g.PatientID == key.PatientID && g.Type == key.Type && g.Date == key.Date {
				apply(g, false)
				g.UpdatedAt = &now
				saved = *g
				return goals, nil
			}
		}

		g := domain.Goal{
			ID:        uuid.New().String(),
			PatientID: key.PatientID,
			Type:      key.Type,
			Date:      key.Date,
			CreatedAt: now,
		}
		apply(&g, true)
		saved = g
		return append(goals, g), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}

	return &saved, nil
}
