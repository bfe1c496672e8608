package usecase

import (
	"context"

	"github.com/kareem2099/FreeID/domains/health"
)

type HealthService struct {
	store health.IPinger
}

func NewHealthService(store health.IPinger) *HealthService {
	return &HealthService{store: store}
}

// GetSystemHealth reports overall system health based on store
// reachability.
func (s *HealthService) GetSystemHealth(ctx context.Context) *health.SystemHealth {
	systemHealth := &health.SystemHealth{
		Status: "healthy",
		Store:  health.StoreHealth{Connected: true},
	}

	if err := s.store.Ping(ctx); err != nil {
		systemHealth.Status = "unhealthy"
		systemHealth.Store = health.StoreHealth{Connected: false, Error: err.Error()}
	}

	return systemHealth
}
