package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/money"
	"facturo/internal/service"
)

var docsConfig = config.DocumentsConfig{DefaultPaymentTermsDays: 30, QuoteValidityDays: 30}

func newInvoiceService(f *fixture) service.InvoiceService {
	return service.NewInvoiceService(f.tx, f.repos(), f.delivery, f.audit, docsConfig, zap.NewNop())
}

func draftInvoice(f *fixture, kind domain.DocType) *domain.Invoice {
	rate := f.vat21()
	lines := []domain.Line{pricedLine(rate)}
	return &domain.Invoice{
		ID:       uuid.New(),
		TenantID: f.tenant.ID,
		Kind:     kind,
		ClientID: uuid.New(),
		Status:   domain.InvoiceStatusDraft,
		Currency: "EUR",
		Lines:    lines,
		Totals:   domain.SumLines(lines),
	}
}

func TestInvoiceService_Create_ComputesTotals(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	rate := f.vat21()
	clientID := uuid.New()

	f.clients.On("GetByID", mock.Anything, f.tenant.ID, clientID).Return(&domain.Client{}, nil)
	f.taxRates.On("GetByIDs", mock.Anything, f.tenant.ID, []uuid.UUID{rate.ID}).
		Return(map[uuid.UUID]domain.TaxRate{rate.ID: rate}, nil)
	f.invoices.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusDraft && inv.Number == nil && inv.TotalCents == 1209
	})).Return(nil)

	inv, err := svc.Create(context.Background(), f.tenant, f.actorID, service.CreateInvoiceInput{
		ClientID: clientID,
		Lines: []service.LineInput{{
			Description:    "Consulting",
			Quantity:       decimal.NewFromInt(1),
			UnitPriceCents: 999,
			TaxRateID:      rate.ID,
		}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocTypeInvoice, inv.Kind)
	assert.Equal(t, "EUR", inv.Currency)
	assert.Equal(t, money.Cents(999), inv.SubtotalCents)
	assert.Equal(t, money.Cents(210), inv.TaxCents)
	assert.Equal(t, money.Cents(1209), inv.TotalCents)
	f.assertExpectations(t)
}

func TestInvoiceService_Create_UnknownTaxRate(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	clientID, rateID := uuid.New(), uuid.New()

	f.clients.On("GetByID", mock.Anything, f.tenant.ID, clientID).Return(&domain.Client{}, nil)
	f.taxRates.On("GetByIDs", mock.Anything, f.tenant.ID, []uuid.UUID{rateID}).
		Return(map[uuid.UUID]domain.TaxRate{}, nil)

	_, err := svc.Create(context.Background(), f.tenant, f.actorID, service.CreateInvoiceInput{
		ClientID: clientID,
		Lines:    []service.LineInput{{Description: "x", Quantity: decimal.NewFromInt(1), TaxRateID: rateID}},
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines[0].tax_rate_id", verr.Field)
	f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Create_UnknownClient(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	clientID := uuid.New()

	f.clients.On("GetByID", mock.Anything, f.tenant.ID, clientID).Return(nil, domain.ErrClientNotFound)

	_, err := svc.Create(context.Background(), f.tenant, f.actorID, service.CreateInvoiceInput{ClientID: clientID})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client_id", verr.Field)
}

func TestInvoiceService_Create_CorrectionRequiresCreditNote(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	corrected := uuid.New()

	_, err := svc.Create(context.Background(), f.tenant, f.actorID, service.CreateInvoiceInput{
		ClientID:           uuid.New(),
		CorrectedInvoiceID: &corrected,
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "corrected_invoice_id", verr.Field)
	assert.Zero(t, f.tx.calls)
}

func TestInvoiceService_Emit_NumbersAndIssuesTogether(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	draft := draftInvoice(f, domain.DocTypeInvoice)
	issueAt := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, draft.ID).Return(draft, nil)
	f.directory.On("PaymentTermsDays", mock.Anything, f.tenant.ID, domain.CounterpartyClient, draft.ClientID).
		Return(intPtr(15), nil)
	f.sequences.On("Next", mock.Anything, f.tenant.ID, 2026, domain.DocTypeInvoice).Return(7, nil)
	f.invoices.On("MarkIssued", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceStatusIssued && inv.Number != nil && *inv.Number == "F26/07"
	})).Return(nil)

	inv, err := svc.Emit(context.Background(), f.tenant, f.actorID, draft.ID, service.EmitInput{IssueDate: &issueAt})

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusIssued, inv.Status)
	assert.Equal(t, "F26/07", *inv.Number)
	assert.Equal(t, 7, *inv.Sequence)
	assert.Equal(t, 2026, *inv.Year)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *inv.IssueDate)
	assert.Equal(t, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), *inv.DueDate)
	assert.Equal(t, 1, f.tx.calls)
	f.assertExpectations(t)
}

func TestInvoiceService_Emit_DefaultTermsWhenClientHasNone(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	draft := draftInvoice(f, domain.DocTypeInvoice)
	issueAt := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, draft.ID).Return(draft, nil)
	f.directory.On("PaymentTermsDays", mock.Anything, f.tenant.ID, domain.CounterpartyClient, draft.ClientID).
		Return(nil, nil)
	f.sequences.On("Next", mock.Anything, f.tenant.ID, 2026, domain.DocTypeInvoice).Return(1, nil)
	f.invoices.On("MarkIssued", mock.Anything, mock.Anything).Return(nil)

	inv, err := svc.Emit(context.Background(), f.tenant, f.actorID, draft.ID, service.EmitInput{IssueDate: &issueAt})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), *inv.DueDate)
}

func TestInvoiceService_Emit_CreditNoteUsesItsOwnCounter(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	draft := draftInvoice(f, domain.DocTypeCreditNote)
	issueAt := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, draft.ID).Return(draft, nil)
	f.directory.On("PaymentTermsDays", mock.Anything, f.tenant.ID, domain.CounterpartyClient, draft.ClientID).
		Return(intPtr(0), nil)
	f.sequences.On("Next", mock.Anything, f.tenant.ID, 2026, domain.DocTypeCreditNote).Return(1, nil)
	f.invoices.On("MarkIssued", mock.Anything, mock.Anything).Return(nil)

	inv, err := svc.Emit(context.Background(), f.tenant, f.actorID, draft.ID, service.EmitInput{IssueDate: &issueAt})

	require.NoError(t, err)
	assert.Equal(t, "F26/01", *inv.Number)
	f.sequences.AssertNotCalled(t, "Next", mock.Anything, f.tenant.ID, 2026, domain.DocTypeInvoice)
}

func TestInvoiceService_Emit_RejectsNonDraft(t *testing.T) {
	for _, status := range []domain.InvoiceStatus{
		domain.InvoiceStatusIssued,
		domain.InvoiceStatusPartiallyPaid,
		domain.InvoiceStatusPaid,
		domain.InvoiceStatusVoid,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			svc := newInvoiceService(f)
			inv := draftInvoice(f, domain.DocTypeInvoice)
			inv.Status = status

			f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)

			_, err := svc.Emit(context.Background(), f.tenant, f.actorID, inv.ID, service.EmitInput{})

			var terr *domain.TransitionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, domain.ActionEmit, terr.Action)
			assert.Nil(t, inv.Number)
			f.sequences.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.invoices.AssertNotCalled(t, "MarkIssued", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceService_Emit_RequiresLines(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	draft := draftInvoice(f, domain.DocTypeInvoice)
	draft.Lines = nil

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, draft.ID).Return(draft, nil)

	_, err := svc.Emit(context.Background(), f.tenant, f.actorID, draft.ID, service.EmitInput{})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines", verr.Field)
	f.sequences.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Emit_SequenceFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	draft := draftInvoice(f, domain.DocTypeInvoice)
	boom := errors.New("connection reset")

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, draft.ID).Return(draft, nil)
	f.directory.On("PaymentTermsDays", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	f.sequences.On("Next", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(0, boom)

	_, err := svc.Emit(context.Background(), f.tenant, f.actorID, draft.ID, service.EmitInput{})

	require.ErrorIs(t, err, boom)
	f.invoices.AssertNotCalled(t, "MarkIssued", mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestInvoiceService_Emit_NotFound(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	id := uuid.New()

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, id).Return(nil, domain.ErrInvoiceNotFound)

	_, err := svc.Emit(context.Background(), f.tenant, f.actorID, id, service.EmitInput{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func issuedInvoice(f *fixture) *domain.Invoice {
	inv := draftInvoice(f, domain.DocTypeInvoice)
	inv.Status = domain.InvoiceStatusIssued
	inv.Assign(domain.DocumentNumber{Sequence: 1, Year: 2026, Formatted: "F26/01"})
	return inv
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	paidOn := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		alreadyPay money.Cents
		amount     money.Cents
		wantStatus domain.InvoiceStatus
	}{
		{name: "partial", amount: 500, wantStatus: domain.InvoiceStatusPartiallyPaid},
		{name: "settles remainder", alreadyPay: 500, amount: 709, wantStatus: domain.InvoiceStatusPaid},
		{name: "full at once", amount: 1209, wantStatus: domain.InvoiceStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := newInvoiceService(f)
			inv := issuedInvoice(f)
			inv.PaidCents = tt.alreadyPay
			if tt.alreadyPay > 0 {
				inv.Status = domain.InvoiceStatusPartiallyPaid
			}

			f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)
			f.invoices.On("ApplyPayment", mock.Anything, inv, mock.MatchedBy(func(p *domain.InvoicePayment) bool {
				return p.AmountCents == tt.amount && p.PaidOn.Equal(paidOn)
			})).Return(nil)

			got, err := svc.RecordPayment(context.Background(), f.tenant, f.actorID, inv.ID,
				service.RecordPaymentInput{AmountCents: tt.amount, PaidOn: &paidOn, Method: "transfer"})

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.alreadyPay+tt.amount, got.PaidCents)
			f.assertExpectations(t)
		})
	}
}

func TestInvoiceService_RecordPayment_ExceedsOutstanding(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)

	_, err := svc.RecordPayment(context.Background(), f.tenant, f.actorID, inv.ID,
		service.RecordPaymentInput{AmountCents: 1210})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount_cents", verr.Field)
	assert.Contains(t, verr.Message, "12.09")
	f.invoices.AssertNotCalled(t, "ApplyPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_RecordPayment_DraftRejected(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := draftInvoice(f, domain.DocTypeInvoice)

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)

	_, err := svc.RecordPayment(context.Background(), f.tenant, f.actorID, inv.ID,
		service.RecordPaymentInput{AmountCents: 100})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestInvoiceService_RecordPayment_CreditNoteRejected(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)
	inv.Kind = domain.DocTypeCreditNote

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)

	_, err := svc.RecordPayment(context.Background(), f.tenant, f.actorID, inv.ID,
		service.RecordPaymentInput{AmountCents: 100})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceService_RecordPayment_AmountRequired(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)

	_, err := svc.RecordPayment(context.Background(), f.tenant, f.actorID, uuid.New(), service.RecordPaymentInput{})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount_cents", verr.Field)
	assert.Zero(t, f.tx.calls)
}

func TestInvoiceService_Delete_OnlyDrafts(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)

	f.invoices.On("GetForUpdate", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)

	err := svc.Delete(context.Background(), f.tenant, f.actorID, inv.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.invoices.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Send_EmailFailureIsExternal(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)
	client := &domain.Client{Counterparty: domain.Counterparty{ID: inv.ClientID, Name: "Globex", Email: "ap@globex.test"}}

	f.invoices.On("GetByID", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)
	f.clients.On("GetByID", mock.Anything, f.tenant.ID, inv.ClientID).Return(client, nil)
	f.renderer.On("RenderDocumentPDF", mock.Anything, mock.Anything, f.tenant).Return([]byte("%PDF-1.4"), nil)
	f.mailer.On("SendDocumentEmail", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	err := svc.Send(context.Background(), f.tenant, f.actorID, inv.ID)

	var xerr *domain.ExternalServiceError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "email", xerr.Service)
	f.assertExpectations(t)
}

func TestInvoiceService_Send_ClientWithoutEmail(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)

	f.invoices.On("GetByID", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)
	f.clients.On("GetByID", mock.Anything, f.tenant.ID, inv.ClientID).Return(&domain.Client{}, nil)

	err := svc.Send(context.Background(), f.tenant, f.actorID, inv.ID)

	assert.ErrorIs(t, err, domain.ErrValidation)
	f.renderer.AssertNotCalled(t, "RenderDocumentPDF", mock.Anything, mock.Anything, mock.Anything)
}
