package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockRecurringTemplateRepo is a mock implementation of port.RecurringTemplateRepository.
type MockRecurringTemplateRepo struct {
	mock.Mock
}

func (m *MockRecurringTemplateRepo) Create(ctx context.Context, tpl *domain.RecurringTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockRecurringTemplateRepo) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockRecurringTemplateRepo) List(ctx context.Context, tenantID uuid.UUID, offset int, limit int) ([]domain.RecurringTemplate, int, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Int(1), args.Error(2)
}

func (m *MockRecurringTemplateRepo) ListDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]domain.RecurringTemplate, error) {
	args := m.Called(ctx, tenantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Error(1)
}

func (m *MockRecurringTemplateRepo) Update(ctx context.Context, tpl *domain.RecurringTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockRecurringTemplateRepo) SetStatus(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, status domain.TemplateStatus) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockRecurringTemplateRepo) AdvanceNextRunDate(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, from time.Time, to time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, id, from, to)
	return args.Bool(0), args.Error(1)
}
