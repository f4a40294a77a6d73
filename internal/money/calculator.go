package money

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LineTotals is the rounded result of pricing a single line.
type LineTotals struct {
	Subtotal Cents `json:"subtotal_cents"`
	Tax      Cents `json:"tax_cents"`
	Total    Cents `json:"total_cents"`
}

// DocumentTotals is the sum of already-rounded line totals.
type DocumentTotals struct {
	Subtotal Cents `json:"subtotal_cents"`
	Tax      Cents `json:"tax_cents"`
	Total    Cents `json:"total_cents"`
}

// ComputeLine prices a line. Each intermediate value is rounded half away from
// zero before it is used again: subtotal = round(qty * price) and
// tax = round(subtotal * rate / 100).
func ComputeLine(quantity decimal.Decimal, unitPrice Cents, taxRatePercent decimal.Decimal) LineTotals {
	subtotal := FromDecimal(quantity.Mul(decimal.NewFromInt(int64(unitPrice))))
	tax := FromDecimal(decimal.NewFromInt(int64(subtotal)).Mul(taxRatePercent).Div(hundred))
	return LineTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// ComputeDocumentTotals sums line subtotals and taxes independently. Tax is
// never recomputed from the summed subtotal; tax reports reconcile against the
// per-line figures.
func ComputeDocumentTotals(lines []LineTotals) DocumentTotals {
	subtotal := lo.SumBy(lines, func(l LineTotals) Cents { return l.Subtotal })
	tax := lo.SumBy(lines, func(l LineTotals) Cents { return l.Tax })
	return DocumentTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
