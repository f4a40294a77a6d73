package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"facturo/internal/money"
)

// Tenant is the single business entity that owns every other row.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TaxID     string    `db:"tax_id" json:"tax_id"`
	Email     string    `db:"email" json:"email"`
	Address   string    `db:"address" json:"address"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Counterparty holds the fields shared by clients and providers.
type Counterparty struct {
	ID               uuid.UUID `db:"id" json:"id"`
	TenantID         uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name             string    `db:"name" json:"name"`
	TaxID            string    `db:"tax_id" json:"tax_id"`
	Email            string    `db:"email" json:"email"`
	Address          string    `db:"address" json:"address"`
	PaymentTermsDays *int      `db:"payment_terms_days" json:"payment_terms_days"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// TermsOrDefault returns the counterparty's payment terms, or def when unset.
func (c *Counterparty) TermsOrDefault(def int) int {
	if c.PaymentTermsDays == nil {
		return def
	}
	return *c.PaymentTermsDays
}

// Client is a customer invoiced by the tenant.
type Client struct {
	Counterparty
}

// Provider is a supplier whose invoices the tenant books.
type Provider struct {
	Counterparty
}

// TaxRate is a named percentage referenced by lines.
type TaxRate struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	TenantID    uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	Name        string          `db:"name" json:"name"`
	RatePercent decimal.Decimal `db:"rate_percent" json:"rate_percent"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// SequenceCounter is the last number handed out for (tenant, year, doc type).
type SequenceCounter struct {
	TenantID      uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Year          int       `db:"year" json:"year"`
	DocType       DocType   `db:"doc_type" json:"doc_type"`
	CurrentNumber int       `db:"current_number" json:"current_number"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentNumber is a number drawn from a sequence together with its legal rendering.
type DocumentNumber struct {
	Sequence  int    `json:"sequence"`
	Year      int    `json:"year"`
	Formatted string `json:"formatted"`
}

// Numbering is embedded in every numbered document. Number, Sequence and Year
// are either all nil or all set, and never change once set.
type Numbering struct {
	Number   *string `db:"number" json:"number"`
	Sequence *int    `db:"sequence" json:"sequence"`
	Year     *int    `db:"year" json:"year"`
}

// Assign sets all numbering fields from n.
func (nb *Numbering) Assign(n DocumentNumber) {
	formatted, seq, year := n.Formatted, n.Sequence, n.Year
	nb.Number, nb.Sequence, nb.Year = &formatted, &seq, &year
}

// IsNumbered reports whether a number has been assigned.
func (nb *Numbering) IsNumbered() bool { return nb.Number != nil }

// Totals is embedded in every priced document. Total always equals Subtotal + Tax.
type Totals struct {
	SubtotalCents money.Cents `db:"subtotal_cents" json:"subtotal_cents"`
	TaxCents      money.Cents `db:"tax_cents" json:"tax_cents"`
	TotalCents    money.Cents `db:"total_cents" json:"total_cents"`
}

// Line is a priced row of a document. The three totals are computed from
// quantity, unit price and the tax percentage in force when the line was priced.
type Line struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	DocumentKind   DocType         `db:"document_kind" json:"-"`
	DocumentID     uuid.UUID       `db:"document_id" json:"-"`
	Position       int             `db:"position" json:"position"`
	Description    string          `db:"description" json:"description"`
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPriceCents money.Cents     `db:"unit_price_cents" json:"unit_price_cents"`
	TaxRateID      uuid.UUID       `db:"tax_rate_id" json:"tax_rate_id"`
	TaxRatePercent decimal.Decimal `db:"tax_rate_percent" json:"tax_rate_percent"`
	SubtotalCents  money.Cents     `db:"subtotal_cents" json:"subtotal_cents"`
	TaxCents       money.Cents     `db:"tax_cents" json:"tax_cents"`
	TotalCents     money.Cents     `db:"total_cents" json:"total_cents"`
}

// LineTotals returns the calculator view of the line.
func (l *Line) LineTotals() money.LineTotals {
	return money.LineTotals{Subtotal: l.SubtotalCents, Tax: l.TaxCents, Total: l.TotalCents}
}

// SumLines returns document totals for lines.
func SumLines(lines []Line) Totals {
	lt := make([]money.LineTotals, len(lines))
	for i := range lines {
		lt[i] = lines[i].LineTotals()
	}
	t := money.ComputeDocumentTotals(lt)
	return Totals{SubtotalCents: t.Subtotal, TaxCents: t.Tax, TotalCents: t.Total}
}

// Quote is an offer sent to a client. It can be converted once into an invoice.
type Quote struct {
	ID       uuid.UUID   `db:"id" json:"id"`
	TenantID uuid.UUID   `db:"tenant_id" json:"tenant_id"`
	ClientID uuid.UUID   `db:"client_id" json:"client_id"`
	Status   QuoteStatus `db:"status" json:"status"`
	Numbering
	IssueDate  *time.Time `db:"issue_date" json:"issue_date"`
	ValidUntil *time.Time `db:"valid_until" json:"valid_until"`
	Currency   string     `db:"currency" json:"currency"`
	Notes      string     `db:"notes" json:"notes"`
	Totals
	ConvertedInvoiceID *uuid.UUID `db:"converted_invoice_id" json:"converted_invoice_id"`
	DeletedAt          *time.Time `db:"deleted_at" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	Lines              []Line     `db:"-" json:"lines"`
}

// Invoice is a sales invoice or, with Kind CREDIT_NOTE, a credit note.
type Invoice struct {
	ID       uuid.UUID     `db:"id" json:"id"`
	TenantID uuid.UUID     `db:"tenant_id" json:"tenant_id"`
	Kind     DocType       `db:"kind" json:"kind"`
	ClientID uuid.UUID     `db:"client_id" json:"client_id"`
	Status   InvoiceStatus `db:"status" json:"status"`
	Numbering
	IssueDate *time.Time `db:"issue_date" json:"issue_date"`
	DueDate   *time.Time `db:"due_date" json:"due_date"`
	Currency  string     `db:"currency" json:"currency"`
	Notes     string     `db:"notes" json:"notes"`
	Totals
	PaidCents           money.Cents `db:"paid_cents" json:"paid_cents"`
	SourceQuoteID       *uuid.UUID  `db:"source_quote_id" json:"source_quote_id"`
	RecurringTemplateID *uuid.UUID  `db:"recurring_template_id" json:"recurring_template_id"`
	CorrectedInvoiceID  *uuid.UUID  `db:"corrected_invoice_id" json:"corrected_invoice_id"`
	DeletedAt           *time.Time  `db:"deleted_at" json:"-"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
	Lines               []Line      `db:"-" json:"lines"`
}

// Outstanding is what remains to be paid.
func (i *Invoice) Outstanding() money.Cents { return i.TotalCents - i.PaidCents }

// InvoicePayment is one payment event against an issued invoice.
type InvoicePayment struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	TenantID    uuid.UUID   `db:"tenant_id" json:"tenant_id"`
	InvoiceID   uuid.UUID   `db:"invoice_id" json:"invoice_id"`
	AmountCents money.Cents `db:"amount_cents" json:"amount_cents"`
	PaidOn      time.Time   `db:"paid_on" json:"paid_on"`
	Method      string      `db:"method" json:"method"`
	Reference   string      `db:"reference" json:"reference"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// PurchaseInvoice is a supplier invoice booked into the tenant's books.
type PurchaseInvoice struct {
	ID                uuid.UUID             `db:"id" json:"id"`
	TenantID          uuid.UUID             `db:"tenant_id" json:"tenant_id"`
	ProviderID        uuid.UUID             `db:"provider_id" json:"provider_id"`
	SupplierReference string                `db:"supplier_reference" json:"supplier_reference"`
	Status            PurchaseInvoiceStatus `db:"status" json:"status"`
	Numbering
	IssueDate *time.Time `db:"issue_date" json:"issue_date"`
	DueDate   *time.Time `db:"due_date" json:"due_date"`
	Currency  string     `db:"currency" json:"currency"`
	Notes     string     `db:"notes" json:"notes"`
	Totals
	PaidCents money.Cents `db:"paid_cents" json:"paid_cents"`
	DeletedAt *time.Time  `db:"deleted_at" json:"-"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
	Lines     []Line      `db:"-" json:"lines"`
}

// RecurringTemplate generates one invoice per calendar month for a client.
type RecurringTemplate struct {
	ID          uuid.UUID               `db:"id" json:"id"`
	TenantID    uuid.UUID               `db:"tenant_id" json:"tenant_id"`
	ClientID    uuid.UUID               `db:"client_id" json:"client_id"`
	Name        string                  `db:"name" json:"name"`
	DayOfMonth  int                     `db:"day_of_month" json:"day_of_month"`
	NextRunDate time.Time               `db:"next_run_date" json:"next_run_date"`
	Mode        RecurringMode           `db:"mode" json:"mode"`
	Status      TemplateStatus          `db:"status" json:"status"`
	Currency    string                  `db:"currency" json:"currency"`
	Notes       string                  `db:"notes" json:"notes"`
	CreatedAt   time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time               `db:"updated_at" json:"updated_at"`
	Lines       []RecurringTemplateLine `db:"-" json:"lines"`
}

// FollowingRunDate is NextRunDate moved forward exactly one month on DayOfMonth.
// DayOfMonth is capped at 28, so the target day exists in every month.
func (t *RecurringTemplate) FollowingRunDate() time.Time {
	y, m, _ := t.NextRunDate.Date()
	return time.Date(y, m+1, t.DayOfMonth, 0, 0, 0, 0, time.UTC)
}

// RecurringTemplateLine is an unpriced line; tax is resolved at run time.
type RecurringTemplateLine struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	TemplateID     uuid.UUID       `db:"template_id" json:"-"`
	Position       int             `db:"position" json:"position"`
	Description    string          `db:"description" json:"description"`
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPriceCents money.Cents     `db:"unit_price_cents" json:"unit_price_cents"`
	TaxRateID      uuid.UUID       `db:"tax_rate_id" json:"tax_rate_id"`
}

// RecurringRun records one execution attempt of a template. IdempotencyKey is
// unique across all runs.
type RecurringRun struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	TenantID           uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	TemplateID         uuid.UUID  `db:"template_id" json:"template_id"`
	RunDate            time.Time  `db:"run_date" json:"run_date"`
	Status             RunStatus  `db:"status" json:"status"`
	GeneratedInvoiceID *uuid.UUID `db:"generated_invoice_id" json:"generated_invoice_id"`
	ErrorMessage       string     `db:"error_message" json:"error_message"`
	IdempotencyKey     string     `db:"idempotency_key" json:"idempotency_key"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// AuditEvent is an append-only record of something done to an entity.
type AuditEvent struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	TenantID   uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	ActorID    *uuid.UUID      `db:"actor_id" json:"actor_id"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID       `db:"entity_id" json:"entity_id"`
	Action     AuditAction     `db:"action" json:"action"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// RenderableDocument is the read model handed to the PDF renderer.
type RenderableDocument struct {
	Kind         DocType
	Number       string
	IssueDate    time.Time
	DueDate      *time.Time
	Currency     string
	Notes        string
	Counterparty Counterparty
	Lines        []Line
	Totals       Totals
}
