package dto

import (
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
)

// Envelope statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response
type Envelope struct {
	Status      string      `json:"status"`
	MessageCode string      `json:"messageCode"`
	Data        interface{} `json:"data"`
	Timestamp   string      `json:"timestamp"`
}

// NewEnvelope stamps a response with the current time
func NewEnvelope(status, code string, data interface{}) Envelope {
	return Envelope{
		Status:      status,
		MessageCode: code,
		Data:        data,
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// MessageData is the payload of responses that only carry a human-readable message
type MessageData struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// UserInfo is the user summary returned next to a fresh token pair
type UserInfo struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserInfo `json:"user"`
}

// UserResponse wraps the public user view
type UserResponse struct {
	User domain.PublicUser `json:"user"`
}

type PatientResponse struct {
	Patient *domain.Patient `json:"patient"`
}

type GoalsResponse struct {
	Goals []domain.Goal `json:"goals"`
}

type GoalResponse struct {
	Goal *domain.Goal `json:"goal"`
}

type RemindersResponse struct {
	Reminders []domain.Reminder `json:"reminders"`
}

type HealthTipResponse struct {
	Tip *domain.HealthTip `json:"tip"`
}

// PatientWithCompliance is an assigned patient as listed for a provider
type PatientWithCompliance struct {
	domain.Patient
	Compliance domain.ComplianceSummary `json:"compliance"`
}

type PatientsResponse struct {
	Patients []PatientWithCompliance `json:"patients"`
}

// PatientDetailsResponse is everything a provider sees about one assigned patient
type PatientDetailsResponse struct {
	Patient           *domain.Patient           `json:"patient"`
	Goals             []domain.Goal             `json:"goals"`
	Reminders         []domain.Reminder         `json:"reminders"`
	ComplianceRecords []domain.ComplianceRecord `json:"complianceRecords"`
}
