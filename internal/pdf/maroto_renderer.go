// Package pdf renders commercial documents to A4 PDFs with maroto.
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"facturo/internal/domain"
	"facturo/internal/money"
	"facturo/internal/port"
)

var (
	colorPrimary = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorMuted   = &props.Color{Red: 110, Green: 110, Blue: 110}
)

type marotoRenderer struct{}

// NewMarotoRenderer creates a DocumentRenderer backed by maroto v2.
func NewMarotoRenderer() port.DocumentRenderer { return &marotoRenderer{} }

func (r *marotoRenderer) RenderDocumentPDF(_ context.Context, doc *domain.RenderableDocument, tenant *domain.Tenant) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("%s %s", title(doc.Kind), doc.Number), true).
		WithAuthor(tenant.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(doc, tenant))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(doc, tenant))
	m.AddRows(line.NewRow(1, props.Line{Color: colorMuted, Thickness: 0.3}))
	m.AddRows(lineHeaderRow())
	m.AddRows(lineRows(doc)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorMuted, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))
	if doc.Notes != "" {
		m.AddRows(notesRow(doc.Notes))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate %s: %w", doc.Kind, err)
	}
	return out.GetBytes(), nil
}

func title(kind domain.DocType) string {
	switch kind {
	case domain.DocTypeQuote:
		return "QUOTE"
	case domain.DocTypeCreditNote:
		return "CREDIT NOTE"
	case domain.DocTypePurchaseInvoice:
		return "PURCHASE INVOICE"
	default:
		return "INVOICE"
	}
}

// dueLabel names the second date of the header: quotes carry a validity date.
func dueLabel(kind domain.DocType) string {
	if kind == domain.DocTypeQuote {
		return "Valid until"
	}
	return "Due"
}

func headerRow(doc *domain.RenderableDocument, tenant *domain.Tenant) core.Row {
	number := doc.Number
	if number == "" {
		number = "DRAFT"
	}
	right := []core.Component{
		text.New(title(doc.Kind), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1}),
		text.New(number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
	}
	if !doc.IssueDate.IsZero() {
		right = append(right, text.New("Date: "+doc.IssueDate.Format("2006-01-02"),
			props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorMuted}))
	}
	if doc.DueDate != nil {
		right = append(right, text.New(dueLabel(doc.Kind)+": "+doc.DueDate.Format("2006-01-02"),
			props.Text{Size: 8, Align: align.Right, Top: 18, Color: colorMuted}))
	}

	return row.New(24).Add(
		col.New(7).Add(
			text.New(tenant.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(tenant.TaxID, ""), props.Text{Size: 9, Top: 9, Color: colorMuted}),
		),
		col.New(5).Add(right...),
	)
}

func partiesRow(doc *domain.RenderableDocument, tenant *domain.Tenant) core.Row {
	cp := doc.Counterparty
	heading := "BILL TO"
	if doc.Kind == domain.DocTypePurchaseInvoice {
		heading = "SUPPLIER"
	}
	return row.New(22).Add(
		col.New(6).Add(
			text.New("FROM", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(tenant.Name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New(contactLine(tenant.Address, tenant.Email), props.Text{Size: 8, Top: 11, Color: colorMuted}),
		),
		col.New(6).Add(
			text.New(heading, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(cp.Name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New(nonEmpty(cp.TaxID, "-"), props.Text{Size: 8, Top: 11, Color: colorMuted}),
			text.New(contactLine(cp.Address, cp.Email), props.Text{Size: 8, Top: 15, Color: colorMuted}),
		),
	)
}

func lineHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 2}))
	}
	return row.New(8).Add(
		h("Description", 5, align.Left),
		h("Qty", 1, align.Right),
		h("Unit price", 2, align.Right),
		h("Tax", 1, align.Right),
		h("Amount", 3, align.Right),
	)
}

func lineRows(doc *domain.RenderableDocument) []core.Row {
	rows := make([]core.Row, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		rows = append(rows, row.New(7).Add(
			col.New(5).Add(text.New(l.Description, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(amount(l.UnitPriceCents, doc.Currency), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(l.TaxRatePercent.String()+"%", props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(amount(l.SubtotalCents, doc.Currency), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalsRow(doc *domain.RenderableDocument) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: top})
	}
	value := func(c money.Cents, top float64, style fontstyle.Type) core.Component {
		return text.New(amount(c, doc.Currency), props.Text{Style: style, Size: 9, Align: align.Right, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal", 2),
			label("Tax", 8),
			label("Total", 14),
		),
		col.New(3).Add(
			value(doc.Totals.SubtotalCents, 2, fontstyle.Normal),
			value(doc.Totals.TaxCents, 8, fontstyle.Normal),
			value(doc.Totals.TotalCents, 14, fontstyle.Bold),
		),
	)
}

func notesRow(notes string) core.Row {
	return row.New(16).Add(col.New(12).Add(
		text.New("Notes", props.Text{Style: fontstyle.Bold, Size: 8, Top: 3}),
		text.New(notes, props.Text{Size: 8, Top: 8, Color: colorMuted}),
	))
}

func amount(c money.Cents, currency string) string {
	return c.String() + " " + currency
}

func contactLine(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return nonEmpty(strings.Join(kept, " | "), "-")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
