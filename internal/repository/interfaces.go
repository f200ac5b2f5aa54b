package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordDigest string) error
	Delete(ctx context.Context, id string) error
}

// TokenRepository defines methods for refresh-token record operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	GetByUserID(ctx context.Context, userID string) ([]domain.RefreshToken, error)
	// Rotate removes the record matching (userID, oldHash) and inserts next in one write.
	// ErrNotFound means the old record was already gone.
	Rotate(ctx context.Context, userID, oldHash string, next *domain.RefreshToken) error
	DeleteByTokenHash(ctx context.Context, userID, tokenHash string) (int, error)
	DeleteByUserID(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// PatientRepository defines methods for patient profile operations
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Patient, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Patient, error)
	Update(ctx context.Context, id string, apply func(p *domain.Patient)) (*domain.Patient, error)
}

// ProviderRepository defines methods for provider profile operations
type ProviderRepository interface {
	Create(ctx context.Context, provider *domain.Provider) error
	GetByUserID(ctx context.Context, userID string) (*domain.Provider, error)
	AssignPatient(ctx context.Context, providerID, patientID string) error
}

// GoalKey identifies a goal: at most one exists per patient, type and date
type GoalKey struct {
	PatientID string
	Type      string
	Date      string
}

// GoalRepository defines methods for goal operations
type GoalRepository interface {
	ListByPatient(ctx context.Context, patientID string) ([]domain.Goal, error)
	ListByPatients(ctx context.Context, patientIDs []string) (map[string][]domain.Goal, error)
	// Upsert calls apply on the existing goal for key, or on a fresh one when created is true
	Upsert(ctx context.Context, key GoalKey, apply func(g *domain.Goal, created bool)) (*domain.Goal, error)
}

// ReminderRepository defines methods for reminder operations
type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.Reminder) error
	ListByPatient(ctx context.Context, patientID string) ([]domain.Reminder, error)
}

// ComplianceRepository defines methods for compliance record operations
type ComplianceRepository interface {
	Create(ctx context.Context, record *domain.ComplianceRecord) error
	ListByPatient(ctx context.Context, patientID string) ([]domain.ComplianceRecord, error)
	ListByPatients(ctx context.Context, patientIDs []string) (map[string][]domain.ComplianceRecord, error)
}

// HealthTipRepository defines methods for health tip operations
type HealthTipRepository interface {
	Create(ctx context.Context, tip *domain.HealthTip) error
	List(ctx context.Context) ([]domain.HealthTip, error)
}

// AuditRepository appends request-trail entries
type AuditRepository interface {
	Append(ctx context.Context, entries ...domain.AuditLogEntry) error
}
