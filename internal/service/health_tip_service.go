package service

import (
	"context"
	"time"

	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/internal/utils"
)

type healthTipService struct {
	tipRepo repository.HealthTipRepository
	now     func() time.Time
}

// NewHealthTipService creates a new health tip service
func NewHealthTipService(tipRepo repository.HealthTipRepository, now func() time.Time) HealthTipService {
	if now == nil {
		now = time.Now
	}
	return &healthTipService{tipRepo: tipRepo, now: now}
}

// Today returns the tip dated today, falling back to the most recently added one
func (s *healthTipService) Today(ctx context.Context) (*domain.HealthTip, error) {
	tips, err := s.tipRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(tips) == 0 {
		return nil, ErrHealthTipNotFound
	}

	today := utils.Today(s.now())
	for i := range tips {
		if tips[i].Date == today {
			return &tips[i], nil
		}
	}
	return &tips[len(tips)-1], nil
}
