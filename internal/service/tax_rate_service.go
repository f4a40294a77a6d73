package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// CreateTaxRateInput is the DTO for creating a tax rate.
type CreateTaxRateInput struct {
	Name        string          `json:"name" binding:"required,max=100"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// TaxRateService manages the percentages lines are priced with.
type TaxRateService interface {
	Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CreateTaxRateInput) (*domain.TaxRate, error)
	GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.TaxRate, error)
	List(ctx context.Context, tenant *domain.Tenant) ([]domain.TaxRate, error)
}

type taxRateService struct {
	repo  port.TaxRateRepository
	audit port.AuditRecorder
}

// NewTaxRateService creates a new TaxRateService implementation.
func NewTaxRateService(repo port.TaxRateRepository, audit port.AuditRecorder) TaxRateService {
	return &taxRateService{repo: repo, audit: audit}
}

var maxRatePercent = decimal.NewFromInt(100)

func (s *taxRateService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CreateTaxRateInput) (*domain.TaxRate, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.RatePercent.IsNegative() || input.RatePercent.GreaterThan(maxRatePercent) {
		return nil, domain.NewValidationError("rate_percent", "must be between 0 and 100")
	}
	if input.RatePercent.Exponent() < -2 {
		return nil, domain.NewValidationError("rate_percent", "at most two decimal places")
	}
	rate := &domain.TaxRate{
		TenantID:    tenant.ID,
		Name:        input.Name,
		RatePercent: input.RatePercent,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, rate); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityTaxRate, rate.ID, domain.AuditCreated,
		map[string]any{"rate_percent": rate.RatePercent.String()}))
	return rate, nil
}

func (s *taxRateService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.TaxRate, error) {
	return s.repo.GetByID(ctx, tenant.ID, id)
}

func (s *taxRateService) List(ctx context.Context, tenant *domain.Tenant) ([]domain.TaxRate, error) {
	return s.repo.List(ctx, tenant.ID)
}
