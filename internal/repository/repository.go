package repository

import (
	"github.com/prperemyshlev/wellness-portal/pkg/docstore"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User       UserRepository
	Token      TokenRepository
	Patient    PatientRepository
	Provider   ProviderRepository
	Goal       GoalRepository
	Reminder   ReminderRepository
	Compliance ComplianceRepository
	HealthTip  HealthTipRepository
	Audit      AuditRepository
}

// NewRepositories creates all repositories over one document store
func NewRepositories(store docstore.Store) *Repositories {
	return &Repositories{
		User:       NewUserRepository(store),
		Token:      NewTokenRepository(store),
		Patient:    NewPatientRepository(store),
		Provider:   NewProviderRepository(store),
		Goal:       NewGoalRepository(store),
		Reminder:   NewReminderRepository(store),
		Compliance: NewComplianceRepository(store),
		HealthTip:  NewHealthTipRepository(store),
		Audit:      NewAuditRepository(store),
	}
}
