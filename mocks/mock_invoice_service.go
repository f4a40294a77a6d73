package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
	"facturo/internal/port"
	"facturo/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input service.CreateInvoiceInput) (*domain.Invoice, error) {
	args := m.Called(ctx, tenant, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, tenant, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, tenant, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.UpdateInvoiceInput) (*domain.Invoice, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenant, actorID, id)
	return args.Error(0)
}

func (m *MockInvoiceService) Emit(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.EmitInput) (*domain.Invoice, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) RecordPayment(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.RecordPaymentInput) (*domain.Invoice, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListPayments(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]domain.InvoicePayment, error) {
	args := m.Called(ctx, tenant, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoicePayment), args.Error(1)
}

func (m *MockInvoiceService) Send(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenant, actorID, id)
	return args.Error(0)
}

func (m *MockInvoiceService) RenderPDF(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, tenant, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockInvoiceService) ArchivedPDFURL(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (string, error) {
	args := m.Called(ctx, tenant, id)
	return args.String(0), args.Error(1)
}
