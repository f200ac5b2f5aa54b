package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

type reminderRepository struct {
	reminders collection[domain.Reminder]
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(store docstore.Store) ReminderRepository {
	return &reminderRepository{reminders: newCollection[domain.Reminder](store, CollectionReminders)}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC()
	}

	err := r.reminders.update(ctx, func(reminders []domain.Reminder) ([]domain.Reminder, error) {
		return append(reminders, *reminder), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

func (r *reminderRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.Reminder, error) {
	reminders, err := r.reminders.all(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Reminder, 0)
	for _, rem := range reminders {
		if rem.PatientID == patientID {
			result = append(result, rem)
		}
	}
	return result, nil
}
