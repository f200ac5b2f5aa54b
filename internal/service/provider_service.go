package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
)

type providerService struct {
	providerRepo   repository.ProviderRepository
	patientRepo    repository.PatientRepository
	goalRepo       repository.GoalRepository
	reminderRepo   repository.ReminderRepository
	complianceRepo repository.ComplianceRepository
}

// NewProviderService creates a new provider service
func NewProviderService(repos *repository.Repositories) ProviderService {
	return &providerService{
		providerRepo:   repos.Provider,
		patientRepo:    repos.Patient,
		goalRepo:       repos.Goal,
		reminderRepo:   repos.Reminder,
		complianceRepo: repos.Compliance,
	}
}

func (s *providerService) provider(ctx context.Context, caller *domain.AccessClaims) (*domain.Provider, error) {
	if caller == nil || caller.Role != domain.RoleProvider {
		return nil, ErrForbidden
	}

	provider, err := s.providerRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return provider, nil
}

// ListPatients returns the caller's assigned patients with their compliance summary
func (s *providerService) ListPatients(ctx context.Context, caller *domain.AccessClaims) ([]dto.PatientWithCompliance, error) {
	provider, err := s.provider(ctx, caller)
	if err != nil {
		return nil, err
	}

	patients, err := s.patientRepo.GetByIDs(ctx, provider.AssignedPatients)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.ListByPatients(ctx, provider.AssignedPatients)
	if err != nil {
		return nil, err
	}

	records, err := s.complianceRepo.ListByPatients(ctx, provider.AssignedPatients)
	if err != nil {
		return nil, err
	}

	result := make([]dto.PatientWithCompliance, 0, len(patients))
	for _, p := range patients {
		result = append(result, dto.PatientWithCompliance{
			Patient:    p,
			Compliance: domain.Summarize(records[p.ID], goals[p.ID]),
		})
	}
	return result, nil
}

// GetPatientDetails returns one patient's records, provided the patient is assigned to the caller
func (s *providerService) GetPatientDetails(ctx context.Context, caller *domain.AccessClaims, patientID string) (*dto.PatientDetailsResponse, error) {
	provider, err := s.provider(ctx, caller)
	if errors.Is(err, ErrProviderNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	if !provider.IsAssigned(patientID) {
		return nil, ErrForbidden
	}

	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	goals, err := s.goalRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	records, err := s.complianceRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	return &dto.PatientDetailsResponse{
		Patient:           patient,
		Goals:             goals,
		Reminders:         reminders,
		ComplianceRecords: records,
	}, nil
}
