package dto

import (
	"encoding/json"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token to rotate
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest names the session to end; an empty token ends every session of the caller
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdateProfileRequest holds the patient profile fields a patient may change.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name               *string                  `json:"name"`
	DateOfBirth        *string                  `json:"dateOfBirth"`
	Phone              *string                  `json:"phone"`
	Address            *string                  `json:"address"`
	Allergies          *[]string                `json:"allergies"`
	CurrentMedications *[]string                `json:"currentMedications"`
	EmergencyContact   *domain.EmergencyContact `json:"emergencyContact"`
	ConsentGiven       *bool                    `json:"consentGiven"`
}

// SaveGoalRequest creates or updates the goal for (type, date)
type SaveGoalRequest struct {
	Type    string   `json:"type" binding:"required"`
	Target  *float64 `json:"target" binding:"required"`
	Current *float64 `json:"current"`
	Unit    string   `json:"unit"`
	Date    string   `json:"date"`
	// Extra holds any other members of the request object
	Extra domain.Extra `json:"-"`
}

type saveGoalFields SaveGoalRequest

func (r *SaveGoalRequest) UnmarshalJSON(data []byte) error {
	var fields saveGoalFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := domain.ExtraMembers(data, "type", "target", "current", "unit", "date")
	if err != nil {
		return err
	}
	*r = SaveGoalRequest(fields)
	r.Extra = extra
	return nil
}
