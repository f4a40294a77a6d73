package service

import (
	"context"

	"github.com/google/uuid"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// CounterpartyInput is the DTO for creating or updating a client or provider.
type CounterpartyInput struct {
	Name             string `json:"name" binding:"required,max=200"`
	TaxID            string `json:"tax_id" binding:"max=50"`
	Email            string `json:"email" binding:"omitempty,email"`
	Address          string `json:"address" binding:"max=500"`
	PaymentTermsDays *int   `json:"payment_terms_days" binding:"omitempty,gte=0,lte=365"`
}

func (in CounterpartyInput) apply(tenantID uuid.UUID, c *domain.Counterparty) {
	c.TenantID = tenantID
	c.Name = in.Name
	c.TaxID = in.TaxID
	c.Email = in.Email
	c.Address = in.Address
	c.PaymentTermsDays = in.PaymentTermsDays
}

// ClientService manages the customers invoices are addressed to.
type ClientService interface {
	Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CounterpartyInput) (*domain.Client, error)
	GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, tenant *domain.Tenant, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input CounterpartyInput) (*domain.Client, error)
}

type clientService struct {
	repo  port.ClientRepository
	audit port.AuditRecorder
}

// NewClientService creates a new ClientService implementation.
func NewClientService(repo port.ClientRepository, audit port.AuditRecorder) ClientService {
	return &clientService{repo: repo, audit: audit}
}

func (s *clientService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CounterpartyInput) (*domain.Client, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	client := &domain.Client{}
	input.apply(tenant.ID, &client.Counterparty)
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityClient, client.ID, domain.AuditCreated, nil))
	return client, nil
}

func (s *clientService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Client, error) {
	return s.repo.GetByID(ctx, tenant.ID, id)
}

func (s *clientService) List(ctx context.Context, tenant *domain.Tenant, offset, limit int) ([]domain.Client, int, error) {
	return s.repo.List(ctx, tenant.ID, offset, limit)
}

func (s *clientService) Update(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input CounterpartyInput) (*domain.Client, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	client, err := s.repo.GetByID(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	input.apply(tenant.ID, &client.Counterparty)
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityClient, client.ID, domain.AuditUpdated, nil))
	return client, nil
}

// ProviderService manages the suppliers purchase invoices come from.
type ProviderService interface {
	Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CounterpartyInput) (*domain.Provider, error)
	GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Provider, error)
	List(ctx context.Context, tenant *domain.Tenant, offset, limit int) ([]domain.Provider, int, error)
	Update(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input CounterpartyInput) (*domain.Provider, error)
}

type providerService struct {
	repo  port.ProviderRepository
	audit port.AuditRecorder
}

// NewProviderService creates a new ProviderService implementation.
func NewProviderService(repo port.ProviderRepository, audit port.AuditRecorder) ProviderService {
	return &providerService{repo: repo, audit: audit}
}

func (s *providerService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CounterpartyInput) (*domain.Provider, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	provider := &domain.Provider{}
	input.apply(tenant.ID, &provider.Counterparty)
	if err := s.repo.Create(ctx, provider); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityProvider, provider.ID, domain.AuditCreated, nil))
	return provider, nil
}

func (s *providerService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Provider, error) {
	return s.repo.GetByID(ctx, tenant.ID, id)
}

func (s *providerService) List(ctx context.Context, tenant *domain.Tenant, offset, limit int) ([]domain.Provider, int, error) {
	return s.repo.List(ctx, tenant.ID, offset, limit)
}

func (s *providerService) Update(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input CounterpartyInput) (*domain.Provider, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	provider, err := s.repo.GetByID(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	input.apply(tenant.ID, &provider.Counterparty)
	if err := s.repo.Update(ctx, provider); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityProvider, provider.ID, domain.AuditUpdated, nil))
	return provider, nil
}
