package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
)

func TestRenderDocumentPDF(t *testing.T) {
	due := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	doc := &domain.RenderableDocument{
		Kind:      domain.DocTypeInvoice,
		Number:    "F26/7",
		IssueDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:   &due,
		Currency:  "EUR",
		Notes:     "Thank you",
		Counterparty: domain.Counterparty{
			Name:  "Client SL",
			Email: "client@example.com",
		},
		Lines: []domain.Line{{
			Description:    "Consulting",
			Quantity:       decimal.NewFromInt(2),
			UnitPriceCents: 5000,
			TaxRatePercent: decimal.NewFromInt(21),
			SubtotalCents:  10000,
			TaxCents:       2100,
			TotalCents:     12100,
		}},
		Totals: domain.Totals{SubtotalCents: 10000, TaxCents: 2100, TotalCents: 12100},
	}

	out, err := NewMarotoRenderer().RenderDocumentPDF(context.Background(), doc, &domain.Tenant{Name: "Acme"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestDueLabel(t *testing.T) {
	assert.Equal(t, "Valid until", dueLabel(domain.DocTypeQuote))
	assert.Equal(t, "Due", dueLabel(domain.DocTypeCreditNote))
}

func TestContactLine(t *testing.T) {
	assert.Equal(t, "Main St 1 | a@b.c", contactLine("Main St 1", " a@b.c "))
	assert.Equal(t, "-", contactLine("", " "))
}
