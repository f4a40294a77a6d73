package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"facturo/internal/domain"
)

// ListFilter narrows paginated document listings.
type ListFilter struct {
	Status string
	Kind   string
	Offset int
	Limit  int
}

// TenantRepository defines the contract for tenant persistence.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	// GetSingle returns the only tenant row and fails when there is none.
	GetSingle(ctx context.Context) (*domain.Tenant, error)
}

// ClientRepository defines the contract for client persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, client *domain.Client) error
}

// ProviderRepository defines the contract for provider persistence.
type ProviderRepository interface {
	Create(ctx context.Context, provider *domain.Provider) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Provider, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Provider, int, error)
	Update(ctx context.Context, provider *domain.Provider) error
}

// CounterpartyDirectory is the read-only payment terms lookup used when
// computing due dates. A nil result means the counterparty has no explicit terms.
type CounterpartyDirectory interface {
	PaymentTermsDays(ctx context.Context, tenantID uuid.UUID, kind domain.CounterpartyKind, id uuid.UUID) (*int, error)
}

// TaxRateRepository defines the contract for tax rate persistence.
type TaxRateRepository interface {
	Create(ctx context.Context, rate *domain.TaxRate) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.TaxRate, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.TaxRate, error)
	// GetByIDs returns the current rates keyed by id. Missing ids are absent from the map.
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.TaxRate, error)
}

// SequenceRepository is the transactional numbering counter. Next must run on
// the same transaction as the transition that consumes the number.
type SequenceRepository interface {
	Next(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType) (int, error)
	Get(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType) (*domain.SequenceCounter, error)
	ListByYear(ctx context.Context, tenantID uuid.UUID, year int) ([]domain.SequenceCounter, error)
	Set(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType, value int) error
	// CountIssuedAbove counts numbered documents of docType/year whose sequence is greater than value.
	CountIssuedAbove(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType, value int) (int, error)
}

// QuoteRepository defines the contract for quote persistence. Reads never return tombstoned rows.
type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Quote, error)
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]domain.Quote, int, error)
	UpdateDraft(ctx context.Context, quote *domain.Quote) error
	MarkSent(ctx context.Context, quote *domain.Quote) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.QuoteStatus) error
	// SetConverted records the invoice link only if none exists yet. It reports
	// false when the quote was already converted.
	SetConverted(ctx context.Context, tenantID, id, invoiceID uuid.UUID) (bool, error)
	ListExpirable(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]domain.Quote, error)
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

// InvoiceRepository defines the contract for invoice and credit note persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error)
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]domain.Invoice, int, error)
	UpdateDraft(ctx context.Context, invoice *domain.Invoice) error
	MarkIssued(ctx context.Context, invoice *domain.Invoice) error
	ApplyPayment(ctx context.Context, invoice *domain.Invoice, payment *domain.InvoicePayment) error
	ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.InvoicePayment, error)
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PurchaseInvoiceRepository defines the contract for purchase invoice persistence.
type PurchaseInvoiceRepository interface {
	Create(ctx context.Context, purchase *domain.PurchaseInvoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.PurchaseInvoice, error)
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.PurchaseInvoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]domain.PurchaseInvoice, int, error)
	UpdateDraft(ctx context.Context, purchase *domain.PurchaseInvoice) error
	MarkBooked(ctx context.Context, purchase *domain.PurchaseInvoice) error
	MarkPaid(ctx context.Context, purchase *domain.PurchaseInvoice) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

// RecurringTemplateRepository defines the contract for recurring template persistence.
type RecurringTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.RecurringTemplate) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.RecurringTemplate, error)
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.RecurringTemplate, int, error)
	// ListDue returns ACTIVE templates whose next run date is on or before now.
	ListDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]domain.RecurringTemplate, error)
	Update(ctx context.Context, tpl *domain.RecurringTemplate) error
	SetStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.TemplateStatus) error
	// AdvanceNextRunDate moves next_run_date from -> to only if it still equals from.
	AdvanceNextRunDate(ctx context.Context, tenantID, id uuid.UUID, from, to time.Time) (bool, error)
}

// RecurringRunRepository defines the contract for recurring run history.
type RecurringRunRepository interface {
	ExistsByKey(ctx context.Context, key string) (bool, error)
	// Claim inserts run unless a run with the same idempotency key exists, in
	// which case it reports false and writes nothing.
	Claim(ctx context.Context, run *domain.RecurringRun) (bool, error)
	Finish(ctx context.Context, run *domain.RecurringRun) error
	ListByTemplate(ctx context.Context, tenantID, templateID uuid.UUID, offset, limit int) ([]domain.RecurringRun, int, error)
}

// AuditRepository defines the contract for audit event persistence.
type AuditRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
	ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, offset, limit int) ([]domain.AuditEvent, int, error)
}
