package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
	"facturo/internal/port"
	"facturo/internal/service"
)

// MockQuoteService is a mock implementation of service.QuoteService.
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input service.QuoteInput) (*domain.Quote, error) {
	args := m.Called(ctx, tenant, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenant, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.Quote, int, error) {
	args := m.Called(ctx, tenant, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Quote), args.Int(1), args.Error(2)
}

func (m *MockQuoteService) UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.QuoteInput) (*domain.Quote, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenant, actorID, id)
	return args.Error(0)
}

func (m *MockQuoteService) Emit(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.EmitInput) (*domain.Quote, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) Accept(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenant, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) Reject(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenant, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) Convert(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, tenant, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockQuoteService) ExpireOverdue(ctx context.Context, tenant *domain.Tenant, now time.Time) (int, error) {
	args := m.Called(ctx, tenant, now)
	return args.Int(0), args.Error(1)
}

func (m *MockQuoteService) RenderPDF(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, tenant, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
