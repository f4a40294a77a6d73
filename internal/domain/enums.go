package domain

// DocType discriminates document kinds and the numbering sequences they use.
type DocType string

const (
	DocTypeQuote           DocType = "QUOTE"
	DocTypeInvoice         DocType = "INVOICE"
	DocTypeCreditNote      DocType = "CREDIT_NOTE"
	DocTypePurchaseInvoice DocType = "PURCHASE_INVOICE"
)

// ValidDocTypes lists every numbered document kind.
var ValidDocTypes = map[DocType]bool{
	DocTypeQuote:           true,
	DocTypeInvoice:         true,
	DocTypeCreditNote:      true,
	DocTypePurchaseInvoice: true,
}

// QuoteStatus is the lifecycle of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// InvoiceStatus is the lifecycle shared by invoices and credit notes.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	// InvoiceStatusVoid is terminal and reserved; no current flow produces it.
	InvoiceStatusVoid InvoiceStatus = "VOID"
)

// PurchaseInvoiceStatus is the lifecycle of a supplier invoice.
type PurchaseInvoiceStatus string

const (
	PurchaseStatusDraft  PurchaseInvoiceStatus = "DRAFT"
	PurchaseStatusBooked PurchaseInvoiceStatus = "BOOKED"
	PurchaseStatusPaid   PurchaseInvoiceStatus = "PAID"
)

// RecurringMode controls whether a generated invoice is also emitted and mailed.
type RecurringMode string

const (
	RecurringModeGenerateOnly    RecurringMode = "GENERATE_ONLY"
	RecurringModeGenerateAndSend RecurringMode = "GENERATE_AND_SEND"
)

// ValidRecurringModes is the set of accepted template modes.
var ValidRecurringModes = map[RecurringMode]bool{
	RecurringModeGenerateOnly:    true,
	RecurringModeGenerateAndSend: true,
}

// TemplateStatus is whether a recurring template is picked up by ticks.
type TemplateStatus string

const (
	TemplateStatusActive TemplateStatus = "ACTIVE"
	TemplateStatusPaused TemplateStatus = "PAUSED"
)

// RunStatus is the outcome of one recurring template execution.
type RunStatus string

const (
	RunStatusSuccess   RunStatus = "SUCCESS"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusSkipped   RunStatus = "SKIPPED"
	RunStatusGenerated RunStatus = "GENERATED"
)

// CounterpartyKind tells which directory a payment-terms lookup hits.
type CounterpartyKind string

const (
	CounterpartyClient   CounterpartyKind = "client"
	CounterpartyProvider CounterpartyKind = "provider"
)

// UserRole defines the role carried by an access token.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// AuditAction identifies what happened to an entity.
type AuditAction string

const (
	AuditCreated       AuditAction = "created"
	AuditUpdated       AuditAction = "updated"
	AuditDeleted       AuditAction = "deleted"
	AuditEmitted       AuditAction = "emitted"
	AuditAccepted      AuditAction = "accepted"
	AuditRejected      AuditAction = "rejected"
	AuditExpired       AuditAction = "expired"
	AuditConverted     AuditAction = "converted"
	AuditBooked        AuditAction = "booked"
	AuditPaymentAdded  AuditAction = "payment_recorded"
	AuditPaid          AuditAction = "paid"
	AuditSent          AuditAction = "sent"
	AuditPaused        AuditAction = "paused"
	AuditResumed       AuditAction = "resumed"
	AuditRecurringRun  AuditAction = "recurring_run"
	AuditSequenceReset AuditAction = "sequence_reset"
)

// Audit entity types.
const (
	EntityQuote             = "quote"
	EntityInvoice           = "invoice"
	EntityPurchaseInvoice   = "purchase_invoice"
	EntityRecurringTemplate = "recurring_template"
	EntitySequenceCounter   = "sequence_counter"
	EntityClient            = "client"
	EntityProvider          = "provider"
	EntityTaxRate           = "tax_rate"
)
