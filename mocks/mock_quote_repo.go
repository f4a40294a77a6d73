package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// MockQuoteRepo is a mock implementation of port.QuoteRepository.
type MockQuoteRepo struct {
	mock.Mock
}

func (m *MockQuoteRepo) Create(ctx context.Context, quote *domain.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepo) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepo) GetForUpdate(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.ListFilter) ([]domain.Quote, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Quote), args.Int(1), args.Error(2)
}

func (m *MockQuoteRepo) UpdateDraft(ctx context.Context, quote *domain.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepo) MarkSent(ctx context.Context, quote *domain.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepo) UpdateStatus(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, status domain.QuoteStatus) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockQuoteRepo) SetConverted(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuoteRepo) ListExpirable(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]domain.Quote, error) {
	args := m.Called(ctx, tenantID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}

func (m *MockQuoteRepo) SoftDelete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}
