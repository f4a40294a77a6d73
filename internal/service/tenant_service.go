package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/port"
)

// TenantService resolves the single business entity this process serves.
type TenantService interface {
	Current(ctx context.Context) (*domain.Tenant, error)
}

type tenantService struct {
	repo port.TenantRepository
	id   uuid.UUID
}

// NewTenantService creates a TenantService. With an empty cfg.ID the database
// must hold exactly one tenant.
func NewTenantService(repo port.TenantRepository, cfg config.TenantConfig) (TenantService, error) {
	s := &tenantService{repo: repo}
	if cfg.ID != "" {
		id, err := uuid.Parse(cfg.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing tenant id %q: %w", cfg.ID, err)
		}
		s.id = id
	}
	return s, nil
}

func (s *tenantService) Current(ctx context.Context) (*domain.Tenant, error) {
	if s.id != uuid.Nil {
		return s.repo.GetByID(ctx, s.id)
	}
	return s.repo.GetSingle(ctx)
}
