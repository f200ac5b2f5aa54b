package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

// check pings the store and, when enabled, Redis concurrently
func (h *HealthChecker) check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- h.infra.Store().Ping(ctx)
	}()

	go func() {
		if redis := h.infra.Redis(); redis != nil {
			errs <- redis.Ping(ctx)
			return
		}
		errs <- nil
	}()

	return errors.Join(<-errs, <-errs)
}

func (h *HealthChecker) Handler(c *gin.Context) {
	if err := h.check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewEnvelope(dto.StatusError, dto.CodeServiceUnavailable, dto.MessageData{
			Message: err.Error(),
		}))
		return
	}

	c.JSON(http.StatusOK, dto.NewEnvelope(dto.StatusSuccess, dto.CodeHealthy, gin.H{
		"status": "pass",
	}))
}
