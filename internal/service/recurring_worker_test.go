package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/service"
	"facturo/mocks"
)

func TestRecurringWorker_Tick(t *testing.T) {
	tenant := &domain.Tenant{Name: "Acme SL"}
	tenants := new(mocks.MockTenantService)
	recurring := new(mocks.MockRecurringService)
	quotes := new(mocks.MockQuoteService)

	tenants.On("Current", mock.Anything).Return(tenant, nil)
	recurring.On("RunTick", mock.Anything, tenant, mock.Anything).Return(nil, errors.New("db down"))
	quotes.On("ExpireOverdue", mock.Anything, tenant, mock.Anything).Return(2, nil)

	w := service.NewRecurringWorker(tenants, recurring, quotes, service.RecurringWorkerConfig{}, zap.NewNop())
	w.Tick(context.Background())

	// quote expiry still runs when the recurring pass fails
	mock.AssertExpectationsForObjects(t, tenants, recurring, quotes)
}

func TestRecurringWorker_Tick_NoTenant(t *testing.T) {
	tenants := new(mocks.MockTenantService)
	recurring := new(mocks.MockRecurringService)
	quotes := new(mocks.MockQuoteService)

	tenants.On("Current", mock.Anything).Return(nil, domain.ErrTenantNotFound)

	w := service.NewRecurringWorker(tenants, recurring, quotes, service.RecurringWorkerConfig{}, zap.NewNop())
	w.Tick(context.Background())

	recurring.AssertNotCalled(t, "RunTick", mock.Anything, mock.Anything, mock.Anything)
	quotes.AssertNotCalled(t, "ExpireOverdue", mock.Anything, mock.Anything, mock.Anything)
}
