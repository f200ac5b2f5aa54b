package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

type complianceRepository struct {
	records collection[domain.ComplianceRecord]
}

// NewComplianceRepository creates a new compliance record repository
func NewComplianceRepository(store docstore.Store) ComplianceRepository {
	return &complianceRepository{records: newCollection[domain.ComplianceRecord](store, CollectionCompliance)}
}

func (r *complianceRepository) Create(ctx context.Context, record *domain.ComplianceRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	err := r.records.update(ctx, func(records []domain.ComplianceRecord) ([]domain.ComplianceRecord, error) {
		return append(records, *record), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create compliance record: %w", err)
	}

	return nil
}

func (r *complianceRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.ComplianceRecord, error) {
	byPatient, err := r.ListByPatients(ctx, []string{patientID})
	if err != nil {
		return nil, err
	}
	if records := byPatient[patientID]; records != nil {
		return records, nil
	}
	return []domain.ComplianceRecord{}, nil
}

func (r *complianceRepository) ListByPatients(ctx context.Context, patientIDs []string) (map[string][]domain.ComplianceRecord, error) {
	records, err := r.records.all(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(patientIDs))
	for _, id := range patientIDs {
		wanted[id] = true
	}

	result := make(map[string][]domain.ComplianceRecord, len(patientIDs))
	for _, rec := range records {
		if wanted[rec.PatientID] {
			result[rec.PatientID] = append(result[rec.PatientID], rec)
		}
	}
	return result, nil
}
