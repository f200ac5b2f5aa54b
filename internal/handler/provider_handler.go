package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"go.uber.org/zap"
)

// ProviderHandler serves a provider's view of assigned patients. Role and
// assignment checks live in the service.
type ProviderHandler struct {
	providerService service.ProviderService
	logger          *zap.Logger
}

func NewProviderHandler(providerService service.ProviderService, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		providerService: providerService,
		logger:          logger,
	}
}

func (h *ProviderHandler) ListPatients(c *gin.Context) {
	claims, _ := ClaimsFromContext(c)

	patients, err := h.providerService.ListPatients(c.Request.Context(), claims)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodePatientsRetrieved, dto.PatientsResponse{Patients: patients})
}

func (h *ProviderHandler) GetPatientDetails(c *gin.Context) {
	claims, _ := ClaimsFromContext(c)

	details, err := h.providerService.GetPatientDetails(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodePatientDetailsRetrieved, details)
}
