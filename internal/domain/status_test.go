package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
)

func TestCheckInvoiceTransition(t *testing.T) {
	tests := []struct {
		from    domain.InvoiceStatus
		action  domain.Action
		allowed bool
	}{
		{domain.InvoiceStatusDraft, domain.ActionEmit, true},
		{domain.InvoiceStatusDraft, domain.ActionEdit, true},
		{domain.InvoiceStatusDraft, domain.ActionDelete, true},
		{domain.InvoiceStatusDraft, domain.ActionPay, false},
		{domain.InvoiceStatusIssued, domain.ActionEmit, false},
		{domain.InvoiceStatusIssued, domain.ActionEdit, false},
		{domain.InvoiceStatusIssued, domain.ActionDelete, false},
		{domain.InvoiceStatusIssued, domain.ActionPay, true},
		{domain.InvoiceStatusPartiallyPaid, domain.ActionPay, true},
		{domain.InvoiceStatusPaid, domain.ActionPay, false},
		{domain.InvoiceStatusVoid, domain.ActionPay, false},
		{domain.InvoiceStatusVoid, domain.ActionEmit, false},
		{domain.InvoiceStatusDraft, domain.ActionSend, false},
		{domain.InvoiceStatusPaid, domain.ActionSend, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			err := domain.CheckInvoiceTransition(tt.from, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			var te *domain.TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, string(tt.from), te.From)
			assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
		})
	}
}

func TestCheckQuoteTransition(t *testing.T) {
	assert.NoError(t, domain.CheckQuoteTransition(domain.QuoteStatusDraft, domain.ActionEmit))
	assert.NoError(t, domain.CheckQuoteTransition(domain.QuoteStatusSent, domain.ActionAccept))
	assert.NoError(t, domain.CheckQuoteTransition(domain.QuoteStatusSent, domain.ActionReject))
	assert.NoError(t, domain.CheckQuoteTransition(domain.QuoteStatusSent, domain.ActionExpire))
	assert.NoError(t, domain.CheckQuoteTransition(domain.QuoteStatusAccepted, domain.ActionExpire))
	assert.NoError(t, domain.CheckQuoteTransition(domain.QuoteStatusAccepted, domain.ActionConvert))

	assert.ErrorIs(t, domain.CheckQuoteTransition(domain.QuoteStatusDraft, domain.ActionAccept), domain.ErrInvalidTransition)
	assert.ErrorIs(t, domain.CheckQuoteTransition(domain.QuoteStatusSent, domain.ActionConvert), domain.ErrInvalidTransition)
	assert.ErrorIs(t, domain.CheckQuoteTransition(domain.QuoteStatusRejected, domain.ActionExpire), domain.ErrInvalidTransition)
	assert.ErrorIs(t, domain.CheckQuoteTransition(domain.QuoteStatusExpired, domain.ActionAccept), domain.ErrInvalidTransition)
	assert.ErrorIs(t, domain.CheckQuoteTransition(domain.QuoteStatusSent, domain.ActionEmit), domain.ErrInvalidTransition)
}

func TestCheckPurchaseTransition(t *testing.T) {
	assert.NoError(t, domain.CheckPurchaseTransition(domain.PurchaseStatusDraft, domain.ActionBook))
	assert.NoError(t, domain.CheckPurchaseTransition(domain.PurchaseStatusBooked, domain.ActionPay))

	err := domain.CheckPurchaseTransition(domain.PurchaseStatusBooked, domain.ActionBook)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.EqualError(t, err, "purchase_invoice in status BOOKED cannot book")

	assert.Error(t, domain.CheckPurchaseTransition(domain.PurchaseStatusBooked, domain.ActionEdit))
	assert.Error(t, domain.CheckPurchaseTransition(domain.PurchaseStatusPaid, domain.ActionPay))
	assert.Error(t, domain.CheckPurchaseTransition(domain.PurchaseStatusDraft, domain.ActionPay))
}

func TestCheckTemplateTransition(t *testing.T) {
	assert.NoError(t, domain.CheckTemplateTransition(domain.TemplateStatusActive, domain.ActionPause))
	assert.NoError(t, domain.CheckTemplateTransition(domain.TemplateStatusPaused, domain.ActionResume))
	assert.NoError(t, domain.CheckTemplateTransition(domain.TemplateStatusActive, domain.ActionRun))

	err := domain.CheckTemplateTransition(domain.TemplateStatusPaused, domain.ActionRun)
	assert.EqualError(t, err, "recurring_template in status PAUSED cannot run")
	assert.Error(t, domain.CheckTemplateTransition(domain.TemplateStatusActive, domain.ActionResume))
}

func TestStatusAfterPayment(t *testing.T) {
	assert.Equal(t, domain.InvoiceStatusPartiallyPaid, domain.StatusAfterPayment(100, 1209))
	assert.Equal(t, domain.InvoiceStatusPaid, domain.StatusAfterPayment(1209, 1209))
}

func TestRecurringTemplate_FollowingRunDate(t *testing.T) {
	tpl := domain.RecurringTemplate{
		DayOfMonth:  28,
		NextRunDate: time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), tpl.FollowingRunDate())

	tpl.DayOfMonth = 1
	tpl.NextRunDate = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), tpl.FollowingRunDate())
}

func TestNumbering_Assign(t *testing.T) {
	var nb domain.Numbering
	assert.False(t, nb.IsNumbered())

	nb.Assign(domain.DocumentNumber{Sequence: 7, Year: 2025, Formatted: "F25/07"})

	require.True(t, nb.IsNumbered())
	assert.Equal(t, "F25/07", *nb.Number)
	assert.Equal(t, 7, *nb.Sequence)
	assert.Equal(t, 2025, *nb.Year)
}

func TestSumLines(t *testing.T) {
	lines := []domain.Line{
		{SubtotalCents: 999, TaxCents: 210, TotalCents: 1209},
		{SubtotalCents: 10000, TaxCents: 2100, TotalCents: 12100},
	}
	got := domain.SumLines(lines)
	assert.Equal(t, domain.Totals{SubtotalCents: 10999, TaxCents: 2310, TotalCents: 13309}, got)
}
