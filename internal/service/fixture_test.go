package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/port"
	"facturo/internal/service"
	"facturo/mocks"
)

// fakeTx runs fn directly against the mocked repositories and counts calls.
type fakeTx struct {
	repos port.Repos
	calls int
}

func (f *fakeTx) Run(_ context.Context, fn func(r port.Repos) error) error {
	f.calls++
	return fn(f.repos)
}

type fixture struct {
	sequences *mocks.MockSequenceRepo
	directory *mocks.MockCounterpartyDirectory
	clients   *mocks.MockClientRepo
	taxRates  *mocks.MockTaxRateRepo
	quotes    *mocks.MockQuoteRepo
	invoices  *mocks.MockInvoiceRepo
	purchases *mocks.MockPurchaseInvoiceRepo
	templates *mocks.MockRecurringTemplateRepo
	runs      *mocks.MockRecurringRunRepo
	audit     *mocks.MockAuditRecorder
	renderer  *mocks.MockDocumentRenderer
	mailer    *mocks.MockEmailSender
	tx        *fakeTx
	delivery  *service.DocumentDelivery
	tenant    *domain.Tenant
	actorID   *uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sequences: new(mocks.MockSequenceRepo),
		directory: new(mocks.MockCounterpartyDirectory),
		clients:   new(mocks.MockClientRepo),
		taxRates:  new(mocks.MockTaxRateRepo),
		quotes:    new(mocks.MockQuoteRepo),
		invoices:  new(mocks.MockInvoiceRepo),
		purchases: new(mocks.MockPurchaseInvoiceRepo),
		templates: new(mocks.MockRecurringTemplateRepo),
		runs:      new(mocks.MockRecurringRunRepo),
		audit:     new(mocks.MockAuditRecorder),
		renderer:  new(mocks.MockDocumentRenderer),
		mailer:    new(mocks.MockEmailSender),
		tenant:    &domain.Tenant{ID: uuid.New(), Name: "Acme SL", Currency: "EUR"},
	}
	actor := uuid.New()
	f.actorID = &actor
	f.tx = &fakeTx{repos: f.repos()}
	f.delivery = service.NewDocumentDelivery(f.renderer, f.mailer, nil, service.DeliveryConfig{}, zap.NewNop())
	f.audit.On("Record", mock.Anything, mock.Anything).Return().Maybe()
	return f
}

func (f *fixture) repos() port.Repos {
	return port.Repos{
		Sequences:      f.sequences,
		Counterparties: f.directory,
		Clients:        f.clients,
		TaxRates:       f.taxRates,
		Quotes:         f.quotes,
		Invoices:       f.invoices,
		Purchases:      f.purchases,
		Templates:      f.templates,
		Runs:           f.runs,
	}
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	mock.AssertExpectationsForObjects(t,
		f.sequences, f.directory, f.clients, f.taxRates, f.quotes,
		f.invoices, f.purchases, f.templates, f.runs, f.renderer, f.mailer)
}

func (f *fixture) vat21() domain.TaxRate {
	return domain.TaxRate{ID: uuid.New(), TenantID: f.tenant.ID, Name: "General", RatePercent: decimal.NewFromInt(21), IsActive: true}
}

// pricedLine is 1 x 9.99 at 21%.
func pricedLine(rate domain.TaxRate) domain.Line {
	return domain.Line{
		Position:       1,
		Description:    "Consulting",
		Quantity:       decimal.NewFromInt(1),
		UnitPriceCents: 999,
		TaxRateID:      rate.ID,
		TaxRatePercent: rate.RatePercent,
		SubtotalCents:  999,
		TaxCents:       210,
		TotalCents:     1209,
	}
}

func intPtr(v int) *int { return &v }
