package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// MockPurchaseInvoiceRepo is a mock implementation of port.PurchaseInvoiceRepository.
type MockPurchaseInvoiceRepo struct {
	mock.Mock
}

func (m *MockPurchaseInvoiceRepo) Create(ctx context.Context, purchase *domain.PurchaseInvoice) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceRepo) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceRepo) GetForUpdate(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.ListFilter) ([]domain.PurchaseInvoice, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PurchaseInvoice), args.Int(1), args.Error(2)
}

func (m *MockPurchaseInvoiceRepo) UpdateDraft(ctx context.Context, purchase *domain.PurchaseInvoice) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceRepo) MarkBooked(ctx context.Context, purchase *domain.PurchaseInvoice) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceRepo) MarkPaid(ctx context.Context, purchase *domain.PurchaseInvoice) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceRepo) SoftDelete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}
