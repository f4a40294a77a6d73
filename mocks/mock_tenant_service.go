package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockTenantService is a mock implementation of service.TenantService.
type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) Current(ctx context.Context) (*domain.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}
