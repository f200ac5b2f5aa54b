package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

type patientRepository struct {
	patients collection[domain.Patient]
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(store docstore.Store) PatientRepository {
	return &patientRepository{patients: newCollection[domain.Patient](store, CollectionPatients)}
}

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	err := r.patients.update(ctx, func(patients []domain.Patient) ([]domain.Patient, error) {
		for _, p := range patients {
			if p.ID == patient.ID {
				return nil, fmt.Errorf("patient %s: %w", patient.ID, ErrDuplicateID)
			}
		}
		return append(patients, *patient), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}

	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	patients, err := r.patients.all(ctx)
	if err != nil {
		return nil, err
	}

	for i := range patients {
		if patients[i].ID == id {
			return &patients[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetByUserID retrieves the profile owned by a user
func (r *patientRepository) GetByUserID(ctx context.Context, userID string) (*domain.Patient, error) {
	patients, err := r.patients.all(ctx)
	if err != nil {
		return nil, err
	}

	for i := range patients {
		if patients[i].UserID == userID {
			return &patients[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetByIDs returns the patients in ids order, skipping ids with no profile
func (r *patientRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Patient, error) {
	patients, err := r.patients.all(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}

	result := make([]domain.Patient, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// Update applies changes to the stored profile and stamps updatedAt
func (r *patientRepository) Update(ctx context.Context, id string, apply func(p *domain.Patient)) (*domain.Patient, error) {
	var updated domain.Patient
	err := r.patients.update(ctx, func(patients []domain.Patient) ([]domain.Patient, error) {
		for i := range patients {
			if patients[i].ID == id {
				apply(&patients[i])
				patients[i].UpdatedAt = time.Now().UTC()
				updated = patients[i]
				return patients, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	return &updated, nil
}
