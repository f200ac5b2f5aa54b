package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"go.uber.org/zap"
)

// PatientHandler serves a patient's own profile, goals and reminders
type PatientHandler struct {
	patientService service.PatientService
	logger         *zap.Logger
}

func NewPatientHandler(patientService service.PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger,
	}
}

func (h *PatientHandler) GetProfile(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	patient, err := h.patientService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodePatientProfileRetrieved, dto.PatientResponse{Patient: patient})
}

// UpdateProfile changes whitelisted profile fields; anything else in the body is ignored
func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	var req dto.UpdateProfileRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	patient, err := h.patientService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodePatientProfileUpdated, dto.PatientResponse{Patient: patient})
}

func (h *PatientHandler) ListGoals(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	goals, err := h.patientService.ListGoals(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeGoalsRetrieved, dto.GoalsResponse{Goals: goals})
}

func (h *PatientHandler) SaveGoal(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	var req dto.SaveGoalRequest
	if !bindJSON(c, &req, service.ErrMissingGoalFields) {
		return
	}

	goal, err := h.patientService.SaveGoal(c.Request.Context(), userID, &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeGoalSaved, dto.GoalResponse{Goal: goal})
}

func (h *PatientHandler) ListReminders(c *gin.Context) {
	userID, _ := UserIDFromContext(c)

	reminders, err := h.patientService.ListReminders(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeRemindersRetrieved, dto.RemindersResponse{Reminders: reminders})
}
