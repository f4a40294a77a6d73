package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockRecurringRunRepo is a mock implementation of port.RecurringRunRepository.
type MockRecurringRunRepo struct {
	mock.Mock
}

func (m *MockRecurringRunRepo) ExistsByKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecurringRunRepo) Claim(ctx context.Context, run *domain.RecurringRun) (bool, error) {
	args := m.Called(ctx, run)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecurringRunRepo) Finish(ctx context.Context, run *domain.RecurringRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRecurringRunRepo) ListByTemplate(ctx context.Context, tenantID uuid.UUID, templateID uuid.UUID, offset int, limit int) ([]domain.RecurringRun, int, error) {
	args := m.Called(ctx, tenantID, templateID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecurringRun), args.Int(1), args.Error(2)
}
