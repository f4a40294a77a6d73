package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/port"
)

// PurchaseInvoiceInput is the DTO for creating or editing a DRAFT purchase invoice.
type PurchaseInvoiceInput struct {
	ProviderID        uuid.UUID   `json:"provider_id" binding:"required"`
	SupplierReference string      `json:"supplier_reference" binding:"max=100"`
	IssueDate         *time.Time  `json:"issue_date"`
	Currency          string      `json:"currency" binding:"omitempty,len=3"`
	Notes             string      `json:"notes" binding:"max=2000"`
	Lines             []LineInput `json:"lines" binding:"dive"`
}

// PurchaseInvoiceService defines the purchase invoice lifecycle.
type PurchaseInvoiceService interface {
	Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input PurchaseInvoiceInput) (*domain.PurchaseInvoice, error)
	GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.PurchaseInvoice, error)
	List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.PurchaseInvoice, int, error)
	UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input PurchaseInvoiceInput) (*domain.PurchaseInvoice, error)
	Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error
	// Book numbers the purchase invoice and moves it to BOOKED. Booking is one-way.
	Book(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input EmitInput) (*domain.PurchaseInvoice, error)
	MarkPaid(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.PurchaseInvoice, error)
}

type purchaseInvoiceService struct {
	tx    port.TxRunner
	repos port.Repos
	audit port.AuditRecorder
	cfg   config.DocumentsConfig
	log   *zap.Logger
	now   func() time.Time
}

// NewPurchaseInvoiceService creates a new PurchaseInvoiceService implementation.
func NewPurchaseInvoiceService(tx port.TxRunner, repos port.Repos, audit port.AuditRecorder, cfg config.DocumentsConfig, log *zap.Logger) PurchaseInvoiceService {
	return &purchaseInvoiceService{
		tx:    tx,
		repos: repos,
		audit: audit,
		cfg:   cfg,
		log:   log.Named("purchase_invoice"),
		now:   time.Now,
	}
}

func (s *purchaseInvoiceService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input PurchaseInvoiceInput) (*domain.PurchaseInvoice, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	p := &domain.PurchaseInvoice{
		TenantID:          tenant.ID,
		ProviderID:        input.ProviderID,
		SupplierReference: input.SupplierReference,
		Status:            domain.PurchaseStatusDraft,
		IssueDate:         datePtr(input.IssueDate),
		Currency:          currencyOrDefault(input.Currency, tenant),
		Notes:             input.Notes,
	}
	err := s.tx.Run(ctx, func(r port.Repos) error {
		if err := requireProvider(ctx, r.Counterparties, tenant.ID, input.ProviderID); err != nil {
			return err
		}
		lines, err := priceLines(ctx, r.TaxRates, tenant.ID, input.Lines)
		if err != nil {
			return err
		}
		p.Lines = lines
		p.Totals = domain.SumLines(lines)
		return r.Purchases.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityPurchaseInvoice, p.ID, domain.AuditCreated,
		map[string]any{"total_cents": p.TotalCents, "supplier_reference": p.SupplierReference}))
	return p, nil
}

func (s *purchaseInvoiceService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	return s.repos.Purchases.GetByID(ctx, tenant.ID, id)
}

func (s *purchaseInvoiceService) List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.PurchaseInvoice, int, error) {
	return s.repos.Purchases.List(ctx, tenant.ID, filter)
}

func (s *purchaseInvoiceService) UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input PurchaseInvoiceInput) (*domain.PurchaseInvoice, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var p *domain.PurchaseInvoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		p, err = r.Purchases.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckPurchaseTransition(p.Status, domain.ActionEdit); err != nil {
			return err
		}
		if err := requireProvider(ctx, r.Counterparties, tenant.ID, input.ProviderID); err != nil {
			return err
		}
		lines, err := priceLines(ctx, r.TaxRates, tenant.ID, input.Lines)
		if err != nil {
			return err
		}
		p.ProviderID = input.ProviderID
		p.SupplierReference = input.SupplierReference
		p.IssueDate = datePtr(input.IssueDate)
		p.Currency = currencyOrDefault(input.Currency, tenant)
		p.Notes = input.Notes
		p.Lines = lines
		p.Totals = domain.SumLines(lines)
		return r.Purchases.UpdateDraft(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityPurchaseInvoice, p.ID, domain.AuditUpdated,
		map[string]any{"total_cents": p.TotalCents, "lines": len(p.Lines)}))
	return p, nil
}

func (s *purchaseInvoiceService) Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	err := s.tx.Run(ctx, func(r port.Repos) error {
		p, err := r.Purchases.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckPurchaseTransition(p.Status, domain.ActionDelete); err != nil {
			return err
		}
		return r.Purchases.SoftDelete(ctx, tenant.ID, id)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityPurchaseInvoice, id, domain.AuditDeleted, nil))
	return nil
}

func (s *purchaseInvoiceService) Book(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input EmitInput) (*domain.PurchaseInvoice, error) {
	var p *domain.PurchaseInvoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		p, err = r.Purchases.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckPurchaseTransition(p.Status, domain.ActionBook); err != nil {
			return err
		}
		if err := requireLines(len(p.Lines)); err != nil {
			return err
		}

		// The supplier's own issue date wins over today when it was recorded on the draft.
		issue := utcDate(s.now())
		switch {
		case input.IssueDate != nil:
			issue = utcDate(*input.IssueDate)
		case p.IssueDate != nil:
			issue = utcDate(*p.IssueDate)
		}
		due, err := dueDateFor(ctx, r.Counterparties, tenant.ID, domain.CounterpartyProvider, p.ProviderID, issue, s.cfg.DefaultPaymentTermsDays)
		if err != nil {
			return err
		}
		num, err := NextDocumentNumber(ctx, r.Sequences, tenant.ID, issue.Year(), domain.DocTypePurchaseInvoice)
		if err != nil {
			return err
		}
		p.Assign(num)
		p.Status = domain.PurchaseStatusBooked
		p.IssueDate = &issue
		p.DueDate = &due
		return r.Purchases.MarkBooked(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase invoice booked", zap.String("purchase_invoice_id", p.ID.String()), zap.String("number", *p.Number))
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityPurchaseInvoice, p.ID, domain.AuditBooked,
		map[string]any{"number": *p.Number, "due_date": p.DueDate.Format(time.DateOnly)}))
	return p, nil
}

func (s *purchaseInvoiceService) MarkPaid(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	var p *domain.PurchaseInvoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		p, err = r.Purchases.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckPurchaseTransition(p.Status, domain.ActionPay); err != nil {
			return err
		}
		p.Status = domain.PurchaseStatusPaid
		p.PaidCents = p.TotalCents
		return r.Purchases.MarkPaid(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityPurchaseInvoice, p.ID, domain.AuditPaid,
		map[string]any{"paid_cents": p.PaidCents}))
	return p, nil
}

func requireProvider(ctx context.Context, dir port.CounterpartyDirectory, tenantID, id uuid.UUID) error {
	if _, err := dir.PaymentTermsDays(ctx, tenantID, domain.CounterpartyProvider, id); err != nil {
		if isNotFound(err) {
			return domain.NewValidationError("provider_id", "provider not found")
		}
		return err
	}
	return nil
}
