package domain

import (
	"encoding/json"
	"time"
)

// EmergencyContact is a patient's emergency contact
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Patient is the clinical profile companion of a patient user. Its id equals the user id.
type Patient struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"userId"`
	Name               string           `json:"name"`
	Email              string           `json:"email"`
	DateOfBirth        *string          `json:"dateOfBirth"`
	Phone              *string          `json:"phone"`
	Address            *string          `json:"address"`
	Allergies          []string         `json:"allergies"`
	CurrentMedications []string         `json:"currentMedications"`
	EmergencyContact   EmergencyContact `json:"emergencyContact"`
	ConsentGiven       bool             `json:"consentGiven"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// NewPatient builds an empty profile for a freshly registered patient
func NewPatient(u *User, now time.Time) *Patient {
	return &Patient{
		ID:                 u.ID,
		UserID:             u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Allergies:          []string{},
		CurrentMedications: []string{},
		ConsentGiven:       false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Provider is a healthcare provider profile
type Provider struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	Specialty        string    `json:"specialty,omitempty"`
	AssignedPatients []string  `json:"assignedPatients"`
	CreatedAt        time.Time `json:"createdAt"`
}

// IsAssigned reports whether the patient is in the provider's assignedPatients list
func (p *Provider) IsAssigned(patientID string) bool {
	for _, id := range p.AssignedPatients {
		if id == patientID {
			return true
		}
	}
	return false
}

// Goal is a daily wellness goal, unique per (patient, type, date)
type Goal struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patientId"`
	Type      string     `json:"type"`
	Target    float64    `json:"target"`
	Current   float64    `json:"current"`
	Unit      string     `json:"unit"`
	Date      string     `json:"date"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	// Extra carries client-defined goal attributes, stored and returned alongside the modeled ones
	Extra Extra `json:"-"`
}

var goalKeys = keySet("id", "patientId", "type", "target", "current", "unit", "date", "createdAt", "updatedAt")

type goalFields Goal

func (g Goal) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(goalFields(g))
	if err != nil {
		return nil, err
	}
	return mergeExtra(encoded, g.Extra, goalKeys)
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	var fields goalFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := splitExtra(data, goalKeys)
	if err != nil {
		return err
	}
	*g = Goal(fields)
	g.Extra = extra
	return nil
}

// SetExtra merges client-defined attributes into the goal. Modeled keys are ignored.
func (g *Goal) SetExtra(extra Extra) {
	for k, v := range extra {
		if goalKeys[k] {
			continue
		}
		if g.Extra == nil {
			g.Extra = make(Extra)
		}
		g.Extra[k] = v
	}
}

// Met reports whether current progress reached the target
func (g Goal) Met() bool {
	return g.Current >= g.Target
}

// Reminder is a preventive-care reminder for a patient
type Reminder struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	Title     string    `json:"title"`
	Type      string    `json:"type,omitempty"`
	DueDate   string    `json:"dueDate"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Compliance record statuses
const (
	ComplianceScheduled = "scheduled"
	ComplianceCompleted = "completed"
	ComplianceMissed    = "missed"
)

// ComplianceRecord tracks a checkup and whether the patient attended it
type ComplianceRecord struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
}

// ComplianceSummary aggregates a patient's checkups and goals for a provider
type ComplianceSummary struct {
	UpcomingCheckups  int `json:"upcomingCheckups"`
	CompletedCheckups int `json:"completedCheckups"`
	MissedCheckups    int `json:"missedCheckups"`
	GoalsMetCount     int `json:"goalsMetCount"`
	TotalGoals        int `json:"totalGoals"`
	ComplianceRate    int `json:"complianceRate"`
}

// Summarize computes the compliance summary from a patient's records and goals
func Summarize(records []ComplianceRecord, goals []Goal) ComplianceSummary {
	var s ComplianceSummary
	for _, r := range records {
		switch r.Status {
		case ComplianceScheduled:
			s.UpcomingCheckups++
		case ComplianceCompleted:
			s.CompletedCheckups++
		case ComplianceMissed:
			s.MissedCheckups++
		}
	}
	for _, g := range goals {
		if g.Met() {
			s.GoalsMetCount++
		}
	}
	s.TotalGoals = len(goals)
	if s.TotalGoals > 0 {
		// round half up, as percentages are shown as whole numbers
		s.ComplianceRate = (s.GoalsMetCount*200 + s.TotalGoals) / (2 * s.TotalGoals)
	}
	return s
}

// HealthTip is a daily public health tip
type HealthTip struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date"`
}

// AuditLogEntry is an append-only request trail record
type AuditLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
}
