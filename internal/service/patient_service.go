package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
)

const defaultGoalUnit = "units"

type patientService struct {
	patientRepo  repository.PatientRepository
	goalRepo     repository.GoalRepository
	reminderRepo repository.ReminderRepository
	now          func() time.Time
}

// NewPatientService creates a new patient service
func NewPatientService(repos *repository.Repositories, now func() time.Time) PatientService {
	if now == nil {
		now = time.Now
	}
	return &patientService{
		patientRepo:  repos.Patient,
		goalRepo:     repos.Goal,
		reminderRepo: repos.Reminder,
		now:          now,
	}
}

func (s *patientService) GetProfile(ctx context.Context, userID string) (*domain.Patient, error) {
	patient, err := s.patientRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// UpdateProfile applies the whitelisted fields present in req
func (s *patientService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.Patient, error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.patientRepo.Update(ctx, patient.ID, func(p *domain.Patient) {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.DateOfBirth != nil {
			p.DateOfBirth = req.DateOfBirth
		}
		if req.Phone != nil {
			p.Phone = req.Phone
		}
		if req.Address != nil {
			p.Address = req.Address
		}
		if req.Allergies != nil {
			p.Allergies = *req.Allergies
		}
		if req.CurrentMedications != nil {
			p.CurrentMedications = *req.CurrentMedications
		}
		if req.EmergencyContact != nil {
			p.EmergencyContact = *req.EmergencyContact
		}
		if req.ConsentGiven != nil {
			p.ConsentGiven = *req.ConsentGiven
		}
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return updated, nil
}

func (s *patientService) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.goalRepo.ListByPatient(ctx, patient.ID)
}

// SaveGoal creates or updates the patient's goal for (type, date). Date defaults to today (UTC).
func (s *patientService) SaveGoal(ctx context.Context, userID string, req *dto.SaveGoalRequest) (*domain.Goal, error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Type == "" || req.Target == nil {
		return nil, ErrMissingGoalFields
	}

	date := req.Date
	if date == "" {
		date = utils.Today(s.now())
	} else if !utils.ValidateDate(date) {
		return nil, ErrInvalidDate
	}

	key := repository.GoalKey{PatientID: patient.ID, Type: req.Type, Date: date}
	return s.goalRepo.Upsert(ctx, key, func(g *domain.Goal, created bool) {
		g.Target = *req.Target
		if req.Current != nil {
			g.Current = *req.Current
		}
		if req.Unit != "" {
			g.Unit = req.Unit
		}
		if created && g.Unit == "" {
			g.Unit = defaultGoalUnit
		}
		g.SetExtra(req.Extra)
	})
}

func (s *patientService) ListReminders(ctx context.Context, userID string) ([]domain.Reminder, error) {
	patient, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.reminderRepo.ListByPatient(ctx, patient.ID)
}
