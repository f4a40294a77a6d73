package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockAuditRepo is a mock implementation of port.AuditRepository.
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Create(ctx context.Context, event *domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditRepo) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, offset int, limit int) ([]domain.AuditEvent, int, error) {
	args := m.Called(ctx, tenantID, entityType, entityID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AuditEvent), args.Int(1), args.Error(2)
}
