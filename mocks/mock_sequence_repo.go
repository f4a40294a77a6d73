package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockSequenceRepo is a mock implementation of port.SequenceRepository.
type MockSequenceRepo struct {
	mock.Mock
}

func (m *MockSequenceRepo) Next(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType) (int, error) {
	args := m.Called(ctx, tenantID, year, docType)
	return args.Int(0), args.Error(1)
}

func (m *MockSequenceRepo) Get(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType) (*domain.SequenceCounter, error) {
	args := m.Called(ctx, tenantID, year, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SequenceCounter), args.Error(1)
}

func (m *MockSequenceRepo) ListByYear(ctx context.Context, tenantID uuid.UUID, year int) ([]domain.SequenceCounter, error) {
	args := m.Called(ctx, tenantID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SequenceCounter), args.Error(1)
}

func (m *MockSequenceRepo) Set(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType, value int) error {
	args := m.Called(ctx, tenantID, year, docType, value)
	return args.Error(0)
}

func (m *MockSequenceRepo) CountIssuedAbove(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType, value int) (int, error) {
	args := m.Called(ctx, tenantID, year, docType, value)
	return args.Int(0), args.Error(1)
}
