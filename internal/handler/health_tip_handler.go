package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
	"github.com/prperemyshlev/wellness-portal/internal/service"
	"go.uber.org/zap"
)

type HealthTipHandler struct {
	tipService service.HealthTipService
	logger     *zap.Logger
}

func NewHealthTipHandler(tipService service.HealthTipService, logger *zap.Logger) *HealthTipHandler {
	return &HealthTipHandler{
		tipService: tipService,
		logger:     logger,
	}
}

// Today returns the tip of the day. No authentication required.
func (h *HealthTipHandler) Today(c *gin.Context) {
	tip, err := h.tipService.Today(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondSuccess(c, http.StatusOK, dto.CodeHealthTipRetrieved, dto.HealthTipResponse{Tip: tip})
}
