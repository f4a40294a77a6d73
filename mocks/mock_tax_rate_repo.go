package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockTaxRateRepo is a mock implementation of port.TaxRateRepository.
type MockTaxRateRepo struct {
	mock.Mock
}

func (m *MockTaxRateRepo) Create(ctx context.Context, rate *domain.TaxRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockTaxRateRepo) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*domain.TaxRate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.TaxRate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepo) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.TaxRate, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]domain.TaxRate), args.Error(1)
}
