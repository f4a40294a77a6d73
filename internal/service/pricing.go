package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"facturo/internal/domain"
	"facturo/internal/money"
	"facturo/internal/port"
)

// LineInput is an unpriced document line as supplied by callers.
type LineInput struct {
	Description    string          `json:"description" binding:"required,max=500"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPriceCents money.Cents     `json:"unit_price_cents"`
	TaxRateID      uuid.UUID       `json:"tax_rate_id" binding:"required"`
}

// priceLines resolves current tax rates and computes line totals. Lines that
// reference an unknown tax rate are rejected before anything is written.
// Drafts may have no lines; emitting requires at least one.
func priceLines(ctx context.Context, rates port.TaxRateRepository, tenantID uuid.UUID, in []LineInput) ([]domain.Line, error) {
	if len(in) == 0 {
		return []domain.Line{}, nil
	}
	ids := lo.Uniq(lo.Map(in, func(l LineInput, _ int) uuid.UUID { return l.TaxRateID }))
	found, err := rates.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("priceLines: %w", err)
	}

	lines := make([]domain.Line, 0, len(in))
	for i, l := range in {
		rate, ok := found[l.TaxRateID]
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].tax_rate_id", i), "unknown tax rate")
		}
		if l.Quantity.IsZero() {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "must not be zero")
		}
		totals := money.ComputeLine(l.Quantity, l.UnitPriceCents, rate.RatePercent)
		lines = append(lines, domain.Line{
			Position:       i + 1,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TaxRateID:      rate.ID,
			TaxRatePercent: rate.RatePercent,
			SubtotalCents:  totals.Subtotal,
			TaxCents:       totals.Tax,
			TotalCents:     totals.Total,
		})
	}
	return lines, nil
}

// copyLines clones priced lines for a new document, keeping the stored
// percentages and totals.
func copyLines(lines []domain.Line) []domain.Line {
	return lo.Map(lines, func(l domain.Line, _ int) domain.Line {
		l.ID = uuid.Nil
		return l
	})
}

func requireLines(n int) error {
	if n == 0 {
		return domain.NewValidationError("lines", "at least one line is required")
	}
	return nil
}

// utcDate truncates t to midnight UTC of its calendar date.
func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dueDateFor adds the counterparty's payment terms to issue.
func dueDateFor(ctx context.Context, dir port.CounterpartyDirectory, tenantID uuid.UUID, kind domain.CounterpartyKind, id uuid.UUID, issue time.Time, defaultDays int) (time.Time, error) {
	days, err := dir.PaymentTermsDays(ctx, tenantID, kind, id)
	if err != nil {
		return time.Time{}, err
	}
	terms := defaultDays
	if days != nil {
		terms = *days
	}
	return issue.AddDate(0, 0, terms), nil
}
