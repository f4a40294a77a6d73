package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
	"facturo/internal/service"
)

// MockRecurringService is a mock implementation of service.RecurringService.
type MockRecurringService struct {
	mock.Mock
}

func (m *MockRecurringService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input service.RecurringTemplateInput) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, tenant, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockRecurringService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, tenant, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockRecurringService) List(ctx context.Context, tenant *domain.Tenant, offset int, limit int) ([]domain.RecurringTemplate, int, error) {
	args := m.Called(ctx, tenant, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Int(1), args.Error(2)
}

func (m *MockRecurringService) Update(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input service.RecurringTemplateInput) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, tenant, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockRecurringService) Pause(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, tenant, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockRecurringService) Resume(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, tenant, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockRecurringService) ListRuns(ctx context.Context, tenant *domain.Tenant, id uuid.UUID, offset int, limit int) ([]domain.RecurringRun, int, error) {
	args := m.Called(ctx, tenant, id, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecurringRun), args.Int(1), args.Error(2)
}

func (m *MockRecurringService) RunTick(ctx context.Context, tenant *domain.Tenant, now time.Time) (*service.TickResult, error) {
	args := m.Called(ctx, tenant, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TickResult), args.Error(1)
}

func (m *MockRecurringService) RunNow(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, now time.Time) (*service.TemplateRunResult, error) {
	args := m.Called(ctx, tenant, actorID, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TemplateRunResult), args.Error(1)
}
