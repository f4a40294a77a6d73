package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/money"
	"facturo/internal/port"
)

// CreateInvoiceInput is the DTO for creating a DRAFT invoice or credit note.
type CreateInvoiceInput struct {
	Kind               domain.DocType `json:"kind" binding:"omitempty,oneof=INVOICE CREDIT_NOTE"`
	ClientID           uuid.UUID      `json:"client_id" binding:"required"`
	Currency           string         `json:"currency" binding:"omitempty,len=3"`
	Notes              string         `json:"notes" binding:"max=2000"`
	CorrectedInvoiceID *uuid.UUID     `json:"corrected_invoice_id"`
	Lines              []LineInput    `json:"lines" binding:"dive"`
}

// UpdateInvoiceInput is the DTO for editing a DRAFT invoice. Lines are replaced wholesale.
type UpdateInvoiceInput struct {
	ClientID uuid.UUID   `json:"client_id" binding:"required"`
	Currency string      `json:"currency" binding:"omitempty,len=3"`
	Notes    string      `json:"notes" binding:"max=2000"`
	Lines    []LineInput `json:"lines" binding:"dive"`
}

// EmitInput optionally fixes the issue date; it defaults to today (UTC).
type EmitInput struct {
	IssueDate *time.Time `json:"issue_date"`
}

// RecordPaymentInput is the DTO for registering a payment against an issued invoice.
type RecordPaymentInput struct {
	AmountCents money.Cents `json:"amount_cents" binding:"required,gt=0"`
	PaidOn      *time.Time  `json:"paid_on"`
	Method      string      `json:"method" binding:"max=50"`
	Reference   string      `json:"reference" binding:"max=200"`
}

// InvoiceService defines the invoice and credit note lifecycle.
type InvoiceService interface {
	Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CreateInvoiceInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.Invoice, int, error)
	UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error
	Emit(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input EmitInput) (*domain.Invoice, error)
	RecordPayment(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input RecordPaymentInput) (*domain.Invoice, error)
	ListPayments(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]domain.InvoicePayment, error)
	Send(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error
	RenderPDF(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]byte, string, error)
	ArchivedPDFURL(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (string, error)
}

type invoiceService struct {
	tx       port.TxRunner
	repos    port.Repos
	delivery *DocumentDelivery
	audit    port.AuditRecorder
	cfg      config.DocumentsConfig
	log      *zap.Logger
	now      func() time.Time
}

// NewInvoiceService creates a new InvoiceService implementation. repos serves
// reads outside transactions; every write goes through tx.
func NewInvoiceService(
	tx port.TxRunner,
	repos port.Repos,
	delivery *DocumentDelivery,
	audit port.AuditRecorder,
	cfg config.DocumentsConfig,
	log *zap.Logger,
) InvoiceService {
	return &invoiceService{
		tx:       tx,
		repos:    repos,
		delivery: delivery,
		audit:    audit,
		cfg:      cfg,
		log:      log.Named("invoice"),
		now:      time.Now,
	}
}

func (s *invoiceService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input CreateInvoiceInput) (*domain.Invoice, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	kind := input.Kind
	if kind == "" {
		kind = domain.DocTypeInvoice
	}
	if input.CorrectedInvoiceID != nil && kind != domain.DocTypeCreditNote {
		return nil, domain.NewValidationError("corrected_invoice_id", "only credit notes can correct an invoice")
	}

	inv := &domain.Invoice{
		TenantID:           tenant.ID,
		Kind:               kind,
		ClientID:           input.ClientID,
		Status:             domain.InvoiceStatusDraft,
		Currency:           currencyOrDefault(input.Currency, tenant),
		Notes:              input.Notes,
		CorrectedInvoiceID: input.CorrectedInvoiceID,
	}
	err := s.tx.Run(ctx, func(r port.Repos) error {
		if err := requireClient(ctx, r.Clients, tenant.ID, input.ClientID); err != nil {
			return err
		}
		if input.CorrectedInvoiceID != nil {
			if err := requireCorrectable(ctx, r.Invoices, tenant.ID, *input.CorrectedInvoiceID, input.ClientID); err != nil {
				return err
			}
		}
		lines, err := priceLines(ctx, r.TaxRates, tenant.ID, input.Lines)
		if err != nil {
			return err
		}
		inv.Lines = lines
		inv.Totals = domain.SumLines(lines)
		return r.Invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, inv.ID, domain.AuditCreated,
		map[string]any{"kind": inv.Kind, "total_cents": inv.TotalCents}))
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Invoice, error) {
	return s.repos.Invoices.GetByID(ctx, tenant.ID, id)
}

func (s *invoiceService) List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.Invoice, int, error) {
	return s.repos.Invoices.List(ctx, tenant.ID, filter)
}

func (s *invoiceService) UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var inv *domain.Invoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckInvoiceTransition(inv.Status, domain.ActionEdit); err != nil {
			return err
		}
		if err := requireClient(ctx, r.Clients, tenant.ID, input.ClientID); err != nil {
			return err
		}
		lines, err := priceLines(ctx, r.TaxRates, tenant.ID, input.Lines)
		if err != nil {
			return err
		}
		inv.ClientID = input.ClientID
		inv.Currency = currencyOrDefault(input.Currency, tenant)
		inv.Notes = input.Notes
		inv.Lines = lines
		inv.Totals = domain.SumLines(lines)
		return r.Invoices.UpdateDraft(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, inv.ID, domain.AuditUpdated,
		map[string]any{"total_cents": inv.TotalCents, "lines": len(inv.Lines)}))
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	err := s.tx.Run(ctx, func(r port.Repos) error {
		inv, err := r.Invoices.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckInvoiceTransition(inv.Status, domain.ActionDelete); err != nil {
			return err
		}
		return r.Invoices.SoftDelete(ctx, tenant.ID, id)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, id, domain.AuditDeleted, nil))
	return nil
}

func (s *invoiceService) Emit(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input EmitInput) (*domain.Invoice, error) {
	var inv *domain.Invoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		inv, err = emitInvoice(ctx, r, tenant, id, input.IssueDate, s.cfg.DefaultPaymentTermsDays, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice emitted",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", *inv.Number))
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, inv.ID, domain.AuditEmitted,
		map[string]any{"number": *inv.Number, "due_date": inv.DueDate.Format(time.DateOnly)}))
	return inv, nil
}

// emitInvoice runs the emission steps on r, which must be bound to one
// transaction: lock the row, check status, compute the due date, draw the
// number and write number and status together.
func emitInvoice(ctx context.Context, r port.Repos, tenant *domain.Tenant, id uuid.UUID, issueDate *time.Time, defaultTerms int, now time.Time) (*domain.Invoice, error) {
	inv, err := r.Invoices.GetForUpdate(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckInvoiceTransition(inv.Status, domain.ActionEmit); err != nil {
		return nil, err
	}
	if err := requireLines(len(inv.Lines)); err != nil {
		return nil, err
	}

	issue := utcDate(now)
	if issueDate != nil {
		issue = utcDate(*issueDate)
	}
	due, err := dueDateFor(ctx, r.Counterparties, tenant.ID, domain.CounterpartyClient, inv.ClientID, issue, defaultTerms)
	if err != nil {
		return nil, err
	}
	num, err := NextDocumentNumber(ctx, r.Sequences, tenant.ID, issue.Year(), inv.Kind)
	if err != nil {
		return nil, err
	}

	inv.Assign(num)
	inv.Status = domain.InvoiceStatusIssued
	inv.IssueDate = &issue
	inv.DueDate = &due
	if err := r.Invoices.MarkIssued(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input RecordPaymentInput) (*domain.Invoice, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	paidOn := utcDate(s.now())
	if input.PaidOn != nil {
		paidOn = utcDate(*input.PaidOn)
	}

	var inv *domain.Invoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if inv.Kind == domain.DocTypeCreditNote {
			return domain.NewValidationError("", "credit notes do not receive payments")
		}
		if err := domain.CheckInvoiceTransition(inv.Status, domain.ActionPay); err != nil {
			return err
		}
		if outstanding := inv.Outstanding(); input.AmountCents > outstanding {
			return domain.NewValidationError("amount_cents",
				fmt.Sprintf("exceeds outstanding balance of %s", outstanding))
		}

		inv.PaidCents += input.AmountCents
		inv.Status = domain.StatusAfterPayment(inv.PaidCents, inv.TotalCents)
		return r.Invoices.ApplyPayment(ctx, inv, &domain.InvoicePayment{
			TenantID:    tenant.ID,
			InvoiceID:   inv.ID,
			AmountCents: input.AmountCents,
			PaidOn:      paidOn,
			Method:      input.Method,
			Reference:   input.Reference,
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, inv.ID, domain.AuditPaymentAdded,
		map[string]any{"amount_cents": input.AmountCents, "paid_cents": inv.PaidCents, "status": inv.Status}))
	if inv.Status == domain.InvoiceStatusPaid {
		s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, inv.ID, domain.AuditPaid, nil))
	}
	return inv, nil
}

func (s *invoiceService) ListPayments(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]domain.InvoicePayment, error) {
	if _, err := s.repos.Invoices.GetByID(ctx, tenant.ID, id); err != nil {
		return nil, err
	}
	return s.repos.Invoices.ListPayments(ctx, tenant.ID, id)
}

func (s *invoiceService) Send(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	inv, client, err := s.loadForDelivery(ctx, tenant, id)
	if err != nil {
		return err
	}
	if err := domain.CheckInvoiceTransition(inv.Status, domain.ActionSend); err != nil {
		return err
	}
	if client.Email == "" {
		return domain.NewValidationError("client.email", "client has no email address")
	}
	if err := s.delivery.send(ctx, tenant, renderableInvoice(inv, client), inv.ID.String(), client.Email); err != nil {
		s.log.Warn("invoice delivery failed", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		return err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, inv.ID, domain.AuditSent,
		map[string]any{"to": client.Email}))
	return nil
}

func (s *invoiceService) RenderPDF(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]byte, string, error) {
	inv, client, err := s.loadForDelivery(ctx, tenant, id)
	if err != nil {
		return nil, "", err
	}
	doc := renderableInvoice(inv, client)
	pdf, err := s.delivery.render(ctx, tenant, doc)
	if err != nil {
		return nil, "", err
	}
	return pdf, documentFilename(doc), nil
}

func (s *invoiceService) ArchivedPDFURL(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (string, error) {
	inv, err := s.repos.Invoices.GetByID(ctx, tenant.ID, id)
	if err != nil {
		return "", err
	}
	return s.delivery.archivedURL(ctx, inv.Kind, inv.ID.String())
}

func (s *invoiceService) loadForDelivery(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Invoice, *domain.Client, error) {
	inv, err := s.repos.Invoices.GetByID(ctx, tenant.ID, id)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.repos.Clients.GetByID(ctx, tenant.ID, inv.ClientID)
	if err != nil {
		return nil, nil, err
	}
	return inv, client, nil
}

// requireClient turns a missing client into a validation failure of the input.
func requireClient(ctx context.Context, clients port.ClientRepository, tenantID, id uuid.UUID) error {
	if _, err := clients.GetByID(ctx, tenantID, id); err != nil {
		if isNotFound(err) {
			return domain.NewValidationError("client_id", "client not found")
		}
		return err
	}
	return nil
}

func requireCorrectable(ctx context.Context, invoices port.InvoiceRepository, tenantID, id, clientID uuid.UUID) error {
	orig, err := invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		if isNotFound(err) {
			return domain.NewValidationError("corrected_invoice_id", "invoice not found")
		}
		return err
	}
	if orig.Kind != domain.DocTypeInvoice || !orig.IsNumbered() {
		return domain.NewValidationError("corrected_invoice_id", "only issued invoices can be corrected")
	}
	if orig.ClientID != clientID {
		return domain.NewValidationError("corrected_invoice_id", "corrected invoice belongs to another client")
	}
	return nil
}

func currencyOrDefault(currency string, tenant *domain.Tenant) string {
	if currency != "" {
		return currency
	}
	if tenant.Currency != "" {
		return tenant.Currency
	}
	return "EUR"
}
