package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
	"facturo/internal/port"
	"facturo/internal/service"
)

// MockPurchaseInvoiceService is a mock implementation of service.PurchaseInvoiceService.
type MockPurchaseInvoiceService struct {
	mock.Mock
}

func (m *MockPurchaseInvoiceService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input service.PurchaseInvoiceInput) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tenant, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tenant, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceService) List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.PurchaseInvoice, int, error) {
	args := m.Called(ctx, tenant, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PurchaseInvoice), args.Int(1), args.Error(2)
}

func (m *MockPurchaseInvoiceService) UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.PurchaseInvoiceInput) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceService) Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenant, actorID, id)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceService) Book(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.EmitInput) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceService) MarkPaid(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tenant, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}
