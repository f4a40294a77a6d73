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

// QuoteInput is the DTO for creating or editing a DRAFT quote.
type QuoteInput struct {
	ClientID   uuid.UUID   `json:"client_id" binding:"required"`
	ValidUntil *time.Time  `json:"valid_until"`
	Currency   string      `json:"currency" binding:"omitempty,len=3"`
	Notes      string      `json:"notes" binding:"max=2000"`
	Lines      []LineInput `json:"lines" binding:"dive"`
}

// QuoteService defines the quote lifecycle, including one-time conversion to an invoice.
type QuoteService interface {
	Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input QuoteInput) (*domain.Quote, error)
	GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Quote, error)
	List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.Quote, int, error)
	UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input QuoteInput) (*domain.Quote, error)
	Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error
	Emit(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input EmitInput) (*domain.Quote, error)
	Accept(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Quote, error)
	Reject(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Quote, error)
	// Convert creates a DRAFT invoice from an ACCEPTED quote. A quote converts at most once.
	Convert(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error)
	// ExpireOverdue expires SENT and ACCEPTED quotes whose validity ended before now's date.
	ExpireOverdue(ctx context.Context, tenant *domain.Tenant, now time.Time) (int, error)
	RenderPDF(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]byte, string, error)
}

type quoteService struct {
	tx       port.TxRunner
	repos    port.Repos
	delivery *DocumentDelivery
	audit    port.AuditRecorder
	cfg      config.DocumentsConfig
	log      *zap.Logger
	now      func() time.Time
}

// NewQuoteService creates a new QuoteService implementation.
func NewQuoteService(
	tx port.TxRunner,
	repos port.Repos,
	delivery *DocumentDelivery,
	audit port.AuditRecorder,
	cfg config.DocumentsConfig,
	log *zap.Logger,
) QuoteService {
	return &quoteService{
		tx:       tx,
		repos:    repos,
		delivery: delivery,
		audit:    audit,
		cfg:      cfg,
		log:      log.Named("quote"),
		now:      time.Now,
	}
}

func (s *quoteService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input QuoteInput) (*domain.Quote, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	q := &domain.Quote{
		TenantID:   tenant.ID,
		ClientID:   input.ClientID,
		Status:     domain.QuoteStatusDraft,
		ValidUntil: datePtr(input.ValidUntil),
		Currency:   currencyOrDefault(input.Currency, tenant),
		Notes:      input.Notes,
	}
	err := s.tx.Run(ctx, func(r port.Repos) error {
		if err := requireClient(ctx, r.Clients, tenant.ID, input.ClientID); err != nil {
			return err
		}
		lines, err := priceLines(ctx, r.TaxRates, tenant.ID, input.Lines)
		if err != nil {
			return err
		}
		q.Lines = lines
		q.Totals = domain.SumLines(lines)
		return r.Quotes.Create(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityQuote, q.ID, domain.AuditCreated,
		map[string]any{"total_cents": q.TotalCents}))
	return q, nil
}

func (s *quoteService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.Quote, error) {
	return s.repos.Quotes.GetByID(ctx, tenant.ID, id)
}

func (s *quoteService) List(ctx context.Context, tenant *domain.Tenant, filter port.ListFilter) ([]domain.Quote, int, error) {
	return s.repos.Quotes.List(ctx, tenant.ID, filter)
}

func (s *quoteService) UpdateDraft(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input QuoteInput) (*domain.Quote, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var q *domain.Quote
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		q, err = r.Quotes.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckQuoteTransition(q.Status, domain.ActionEdit); err != nil {
			return err
		}
		if err := requireClient(ctx, r.Clients, tenant.ID, input.ClientID); err != nil {
			return err
		}
		lines, err := priceLines(ctx, r.TaxRates, tenant.ID, input.Lines)
		if err != nil {
			return err
		}
		q.ClientID = input.ClientID
		q.ValidUntil = datePtr(input.ValidUntil)
		q.Currency = currencyOrDefault(input.Currency, tenant)
		q.Notes = input.Notes
		q.Lines = lines
		q.Totals = domain.SumLines(lines)
		return r.Quotes.UpdateDraft(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityQuote, q.ID, domain.AuditUpdated,
		map[string]any{"total_cents": q.TotalCents, "lines": len(q.Lines)}))
	return q, nil
}

func (s *quoteService) Delete(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) error {
	err := s.tx.Run(ctx, func(r port.Repos) error {
		q, err := r.Quotes.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckQuoteTransition(q.Status, domain.ActionDelete); err != nil {
			return err
		}
		return r.Quotes.SoftDelete(ctx, tenant.ID, id)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityQuote, id, domain.AuditDeleted, nil))
	return nil
}

func (s *quoteService) Emit(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input EmitInput) (*domain.Quote, error) {
	var q *domain.Quote
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		q, err = r.Quotes.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckQuoteTransition(q.Status, domain.ActionEmit); err != nil {
			return err
		}
		if err := requireLines(len(q.Lines)); err != nil {
			return err
		}

		issue := utcDate(s.now())
		if input.IssueDate != nil {
			issue = utcDate(*input.IssueDate)
		}
		if q.ValidUntil == nil {
			until := issue.AddDate(0, 0, s.cfg.QuoteValidityDays)
			q.ValidUntil = &until
		}
		num, err := NextDocumentNumber(ctx, r.Sequences, tenant.ID, issue.Year(), domain.DocTypeQuote)
		if err != nil {
			return err
		}
		q.Assign(num)
		q.Status = domain.QuoteStatusSent
		q.IssueDate = &issue
		return r.Quotes.MarkSent(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quote emitted", zap.String("quote_id", q.ID.String()), zap.String("number", *q.Number))
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityQuote, q.ID, domain.AuditEmitted,
		map[string]any{"number": *q.Number, "valid_until": q.ValidUntil.Format(time.DateOnly)}))
	return q, nil
}

func (s *quoteService) Accept(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Quote, error) {
	return s.reply(ctx, tenant, actorID, id, domain.ActionAccept, domain.QuoteStatusAccepted, domain.AuditAccepted)
}

func (s *quoteService) Reject(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Quote, error) {
	return s.reply(ctx, tenant, actorID, id, domain.ActionReject, domain.QuoteStatusRejected, domain.AuditRejected)
}

func (s *quoteService) reply(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, action domain.Action, to domain.QuoteStatus, auditAction domain.AuditAction) (*domain.Quote, error) {
	var q *domain.Quote
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		q, err = r.Quotes.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := domain.CheckQuoteTransition(q.Status, action); err != nil {
			return err
		}
		q.Status = to
		return r.Quotes.UpdateStatus(ctx, tenant.ID, id, to)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityQuote, id, auditAction, nil))
	return q, nil
}

func (s *quoteService) Convert(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error) {
	var inv *domain.Invoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		q, err := r.Quotes.GetForUpdate(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if q.ConvertedInvoiceID != nil {
			return alreadyConverted(q)
		}
		if err := domain.CheckQuoteTransition(q.Status, domain.ActionConvert); err != nil {
			return err
		}

		sourceID := q.ID
		inv = &domain.Invoice{
			TenantID:      tenant.ID,
			Kind:          domain.DocTypeInvoice,
			ClientID:      q.ClientID,
			Status:        domain.InvoiceStatusDraft,
			Currency:      q.Currency,
			Notes:         q.Notes,
			Totals:        q.Totals,
			SourceQuoteID: &sourceID,
			Lines:         copyLines(q.Lines),
		}
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		// The guarded update is the backstop if two conversions race past the
		// check above; losing it rolls back the invoice insert.
		ok, err := r.Quotes.SetConverted(ctx, tenant.ID, q.ID, inv.ID)
		if err != nil {
			return err
		}
		if !ok {
			return alreadyConverted(q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quote converted", zap.String("quote_id", id.String()), zap.String("invoice_id", inv.ID.String()))
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityQuote, id, domain.AuditConverted,
		map[string]any{"invoice_id": inv.ID}))
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityInvoice, inv.ID, domain.AuditCreated,
		map[string]any{"source_quote_id": id}))
	return inv, nil
}

func alreadyConverted(q *domain.Quote) error {
	return &domain.TransitionError{
		Entity: domain.EntityQuote,
		From:   string(q.Status),
		Action: domain.ActionConvert,
		Reason: "quote already converted",
	}
}

func (s *quoteService) ExpireOverdue(ctx context.Context, tenant *domain.Tenant, now time.Time) (int, error) {
	candidates, err := s.repos.Quotes.ListExpirable(ctx, tenant.ID, utcDate(now))
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, c := range candidates {
		err := s.tx.Run(ctx, func(r port.Repos) error {
			q, err := r.Quotes.GetForUpdate(ctx, tenant.ID, c.ID)
			if err != nil {
				return err
			}
			if err := domain.CheckQuoteTransition(q.Status, domain.ActionExpire); err != nil {
				return err
			}
			if q.ConvertedInvoiceID != nil {
				return &domain.TransitionError{
					Entity: domain.EntityQuote,
					From:   string(q.Status),
					Action: domain.ActionExpire,
					Reason: "quote already converted",
				}
			}
			return r.Quotes.UpdateStatus(ctx, tenant.ID, q.ID, domain.QuoteStatusExpired)
		})
		if err != nil {
			// A quote answered or converted since the listing is no longer expirable.
			s.log.Debug("skipping quote expiry", zap.String("quote_id", c.ID.String()), zap.Error(err))
			continue
		}
		expired++
		s.audit.Record(ctx, newAuditEvent(tenant.ID, nil, domain.EntityQuote, c.ID, domain.AuditExpired, nil))
	}
	if expired > 0 {
		s.log.Info("quotes expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *quoteService) RenderPDF(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) ([]byte, string, error) {
	q, err := s.repos.Quotes.GetByID(ctx, tenant.ID, id)
	if err != nil {
		return nil, "", err
	}
	client, err := s.repos.Clients.GetByID(ctx, tenant.ID, q.ClientID)
	if err != nil {
		return nil, "", err
	}
	doc := renderableQuote(q, client)
	pdf, err := s.delivery.render(ctx, tenant, doc)
	if err != nil {
		return nil, "", err
	}
	return pdf, documentFilename(doc), nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := utcDate(*t)
	return &d
}
