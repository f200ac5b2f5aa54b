// Package seed loads demo and fixture data into the document store from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
	"gopkg.in/yaml.v3"
)

// File is the seed document
type File struct {
	Users      []User             `yaml:"users"`
	Reminders  []Reminder         `yaml:"reminders"`
	Compliance []ComplianceRecord `yaml:"compliance"`
	HealthTips []domain.HealthTip `yaml:"healthTips"`
}

// User is an account to create. Providers get a profile and may list the emails of
// the patients assigned to them.
type User struct {
	Email     string          `yaml:"email"`
	Password  string          `yaml:"password"`
	Name      string          `yaml:"name"`
	Role      domain.Role     `yaml:"role"`
	Specialty string          `yaml:"specialty"`
	Patients  []string        `yaml:"patients"`
	Profile   *PatientProfile `yaml:"profile"`
}

// PatientProfile pre-fills a patient's clinical profile
type PatientProfile struct {
	DateOfBirth        string                  `yaml:"dateOfBirth"`
	Phone              string                  `yaml:"phone"`
	Address            string                  `yaml:"address"`
	Allergies          []string                `yaml:"allergies"`
	CurrentMedications []string                `yaml:"currentMedications"`
	EmergencyContact   domain.EmergencyContact `yaml:"emergencyContact"`
	ConsentGiven       bool                    `yaml:"consentGiven"`
}

type Reminder struct {
	Patient   string `yaml:"patient"`
	Title     string `yaml:"title"`
	Type      string `yaml:"type"`
	DueDate   string `yaml:"dueDate"`
	Completed bool   `yaml:"completed"`
}

type ComplianceRecord struct {
	Patient string `yaml:"patient"`
	Type    string `yaml:"type"`
	Date    string `yaml:"date"`
	Status  string `yaml:"status"`
	Notes   string `yaml:"notes"`
}

// Result counts what Apply did
type Result struct {
	UsersCreated int
	UsersSkipped int
	Assignments  int
	Reminders    int
	Compliance   int
	HealthTips   int
	// Existing counts reminders, compliance records and tips that were already stored
	Existing int
}

// PasswordHasher hashes seeded passwords the same way registration does
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Parse decodes and validates a seed document
func Parse(r io.Reader) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses the seed file at path
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return Parse(fh)
}

// Validate checks the document without touching the store
func (f *File) Validate() error {
	emails := make(map[string]domain.Role, len(f.Users))
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" || u.Name == "" {
			return fmt.Errorf("users[%d]: email, password and name are required", i)
		}
		if u.Role == "" {
			f.Users[i].Role = domain.RolePatient
		}
		if !f.Users[i].Role.Valid() {
			return fmt.Errorf("users[%d]: invalid role %q", i, u.Role)
		}
		if _, dup := emails[u.Email]; dup {
			return fmt.Errorf("users[%d]: duplicate email %s", i, u.Email)
		}
		emails[u.Email] = f.Users[i].Role
	}

	for i, r := range f.Reminders {
		if r.Patient == "" || r.Title == "" {
			return fmt.Errorf("reminders[%d]: patient and title are required", i)
		}
		if r.DueDate != "" && !utils.ValidateDate(r.DueDate) {
			return fmt.Errorf("reminders[%d]: invalid dueDate %q", i, r.DueDate)
		}
	}

	for i, c := range f.Compliance {
		if c.Patient == "" || c.Type == "" {
			return fmt.Errorf("compliance[%d]: patient and type are required", i)
		}
		switch c.Status {
		case domain.ComplianceScheduled, domain.ComplianceCompleted, domain.ComplianceMissed:
		default:
			return fmt.Errorf("compliance[%d]: invalid status %q", i, c.Status)
		}
		if c.Date != "" && !utils.ValidateDate(c.Date) {
			return fmt.Errorf("compliance[%d]: invalid date %q", i, c.Date)
		}
	}

	for i, t := range f.HealthTips {
		if t.Title == "" || !utils.ValidateDate(t.Date) {
			return fmt.Errorf("healthTips[%d]: title and a YYYY-MM-DD date are required", i)
		}
	}

	return nil
}

// Seeder writes seed documents through the repositories
type Seeder struct {
	repos  *repository.Repositories
	hasher PasswordHasher
	now    func() time.Time
}

func NewSeeder(repos *repository.Repositories, hasher PasswordHasher) *Seeder {
	return &Seeder{repos: repos, hasher: hasher, now: time.Now}
}

// Apply creates everything in f. Users whose email already exists are kept as they are,
// and reminders, compliance records and tips already present under the same natural key
// are skipped, so a seed file can be applied more than once.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	result := &Result{}

	for _, u := range f.Users {
		created, err := s.ensureUser(ctx, u)
		if err != nil {
			return result, err
		}
		if created {
			result.UsersCreated++
		} else {
			result.UsersSkipped++
		}
	}

	for _, u := range f.Users {
		for _, patientEmail := range u.Patients {
			if err := AssignByEmail(ctx, s.repos, u.Email, patientEmail); err != nil {
				return result, err
			}
			result.Assignments++
		}
	}

	if err := s.applyReminders(ctx, f.Reminders, result); err != nil {
		return result, err
	}
	if err := s.applyCompliance(ctx, f.Compliance, result); err != nil {
		return result, err
	}
	if err := s.applyHealthTips(ctx, f.HealthTips, result); err != nil {
		return result, err
	}

	return result, nil
}

// reminders are keyed by (patient, title, dueDate)
func (s *Seeder) applyReminders(ctx context.Context, reminders []Reminder, result *Result) error {
	for _, r := range reminders {
		patient, err := s.patientByEmail(ctx, r.Patient)
		if err != nil {
			return err
		}

		existing, err := s.repos.Reminder.ListByPatient(ctx, patient.ID)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(existing, func(e domain.Reminder) bool {
			return e.Title == r.Title && e.DueDate == r.DueDate
		}) {
			result.Existing++
			continue
		}

		err = s.repos.Reminder.Create(ctx, &domain.Reminder{
			PatientID: patient.ID,
			Title:     r.Title,
			Type:      r.Type,
			DueDate:   r.DueDate,
			Completed: r.Completed,
		})
		if err != nil {
			return err
		}
		result.Reminders++
	}
	return nil
}

// compliance records are keyed by (patient, type, date)
func (s *Seeder) applyCompliance(ctx context.Context, records []ComplianceRecord, result *Result) error {
	for _, c := range records {
		patient, err := s.patientByEmail(ctx, c.Patient)
		if err != nil {
			return err
		}

		existing, err := s.repos.Compliance.ListByPatient(ctx, patient.ID)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(existing, func(e domain.ComplianceRecord) bool {
			return e.Type == c.Type && e.Date == c.Date
		}) {
			result.Existing++
			continue
		}

		err = s.repos.Compliance.Create(ctx, &domain.ComplianceRecord{
			PatientID: patient.ID,
			Type:      c.Type,
			Date:      c.Date,
			Status:    c.Status,
			Notes:     c.Notes,
		})
		if err != nil {
			return err
		}
		result.Compliance++
	}
	return nil
}

// tips are keyed by (title, date)
func (s *Seeder) applyHealthTips(ctx context.Context, tips []domain.HealthTip, result *Result) error {
	existing, err := s.repos.HealthTip.List(ctx)
	if err != nil {
		return err
	}

	for i := range tips {
		tip := tips[i]
		if slices.ContainsFunc(existing, func(e domain.HealthTip) bool {
			return e.Title == tip.Title && e.Date == tip.Date
		}) {
			result.Existing++
			continue
		}

		if err := s.repos.HealthTip.Create(ctx, &tip); err != nil {
			return err
		}
		existing = append(existing, tip)
		result.HealthTips++
	}
	return nil
}

func (s *Seeder) ensureUser(ctx context.Context, u User) (bool, error) {
	_, err := s.repos.User.GetByEmail(ctx, u.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	digest, err := s.hasher.Hash(u.Password)
	if err != nil {
		return false, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:          u.Email,
		PasswordDigest: digest,
		Name:           u.Name,
		Role:           u.Role,
		CreatedAt:      now,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return false, err
	}

	switch user.Role {
	case domain.RolePatient:
		patient := domain.NewPatient(user, now)
		if p := u.Profile; p != nil {
			patient.DateOfBirth = optional(p.DateOfBirth)
			patient.Phone = optional(p.Phone)
			patient.Address = optional(p.Address)
			if p.Allergies != nil {
				patient.Allergies = p.Allergies
			}
			if p.CurrentMedications != nil {
				patient.CurrentMedications = p.CurrentMedications
			}
			patient.EmergencyContact = p.EmergencyContact
			patient.ConsentGiven = p.ConsentGiven
		}
		if err := s.repos.Patient.Create(ctx, patient); err != nil {
			return false, err
		}

	case domain.RoleProvider:
		err := s.repos.Provider.Create(ctx, &domain.Provider{
			UserID:    user.ID,
			Name:      user.Name,
			Specialty: u.Specialty,
			CreatedAt: now,
		})
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

func (s *Seeder) patientByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	return patientByEmail(ctx, s.repos, email)
}

// AssignByEmail adds a patient to a provider's assigned patients, both identified by account email
func AssignByEmail(ctx context.Context, repos *repository.Repositories, providerEmail, patientEmail string) error {
	providerUser, err := repos.User.GetByEmail(ctx, providerEmail)
	if err != nil {
		return fmt.Errorf("provider %s: %w", providerEmail, err)
	}
	provider, err := repos.Provider.GetByUserID(ctx, providerUser.ID)
	if err != nil {
		return fmt.Errorf("provider profile for %s: %w", providerEmail, err)
	}

	patient, err := patientByEmail(ctx, repos, patientEmail)
	if err != nil {
		return err
	}

	return repos.Provider.AssignPatient(ctx, provider.ID, patient.ID)
}

func patientByEmail(ctx context.Context, repos *repository.Repositories, email string) (*domain.Patient, error) {
	user, err := repos.User.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", email, err)
	}
	patient, err := repos.Patient.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("patient profile for %s: %w", email, err)
	}
	return patient, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
