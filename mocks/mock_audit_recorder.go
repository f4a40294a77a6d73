package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockAuditRecorder is a mock implementation of port.AuditRecorder.
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, event domain.AuditEvent) {
	m.Called(ctx, event)
}
