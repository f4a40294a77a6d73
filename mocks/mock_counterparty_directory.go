package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockCounterpartyDirectory is a mock implementation of port.CounterpartyDirectory.
type MockCounterpartyDirectory struct {
	mock.Mock
}

func (m *MockCounterpartyDirectory) PaymentTermsDays(ctx context.Context, tenantID uuid.UUID, kind domain.CounterpartyKind, id uuid.UUID) (*int, error) {
	args := m.Called(ctx, tenantID, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}
