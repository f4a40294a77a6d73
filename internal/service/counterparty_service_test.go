package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
	"facturo/internal/service"
	"facturo/mocks"
)

func TestProviderService_Create(t *testing.T) {
	repo := new(mocks.MockProviderRepo)
	audit := new(mocks.MockAuditRecorder)
	svc := service.NewProviderService(repo, audit)
	tenant := &domain.Tenant{ID: uuid.New()}

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Provider) bool {
		return p.TenantID == tenant.ID && p.Name == "Iberdrola" && *p.PaymentTermsDays == 60
	})).Return(nil)
	audit.On("Record", mock.Anything, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.EntityType == domain.EntityProvider && e.Action == domain.AuditCreated
	})).Return()

	got, err := svc.Create(context.Background(), tenant, nil, service.CounterpartyInput{
		Name: "Iberdrola", Email: "facturas@iberdrola.test", PaymentTermsDays: intPtr(60),
	})

	require.NoError(t, err)
	assert.Equal(t, "Iberdrola", got.Name)
	repo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestProviderService_Update_NotFound(t *testing.T) {
	repo := new(mocks.MockProviderRepo)
	svc := service.NewProviderService(repo, new(mocks.MockAuditRecorder))
	tenant := &domain.Tenant{ID: uuid.New()}
	id := uuid.New()

	repo.On("GetByID", mock.Anything, tenant.ID, id).Return(nil, domain.ErrProviderNotFound)

	_, err := svc.Update(context.Background(), tenant, nil, id, service.CounterpartyInput{Name: "Renamed"})

	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestClientService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.CounterpartyInput
		field string
	}{
		{"missing name", service.CounterpartyInput{}, "name"},
		{"bad email", service.CounterpartyInput{Name: "Globex", Email: "not-an-email"}, "email"},
		{"terms too long", service.CounterpartyInput{Name: "Globex", PaymentTermsDays: intPtr(400)}, "payment_terms_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockClientRepo)
			svc := service.NewClientService(repo, new(mocks.MockAuditRecorder))

			_, err := svc.Create(context.Background(), &domain.Tenant{ID: uuid.New()}, nil, tt.input)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
