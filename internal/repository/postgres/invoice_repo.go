package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"facturo/internal/domain"
	"facturo/internal/port"
)

type invoiceRepo struct {
	db sqlx.ExtContext
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository. Credit
// notes live in the same table with kind CREDIT_NOTE.
func NewInvoiceRepo(db sqlx.ExtContext) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (
			id, tenant_id, kind, client_id, status, currency, notes,
			subtotal_cents, tax_cents, total_cents, paid_cents,
			source_quote_id, recurring_template_id, corrected_invoice_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		inv.ID, inv.TenantID, inv.Kind, inv.ClientID, inv.Status, inv.Currency, inv.Notes,
		inv.SubtotalCents, inv.TaxCents, inv.TotalCents, inv.PaidCents,
		inv.SourceQuoteID, inv.RecurringTemplateID, inv.CorrectedInvoiceID,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	if err := replaceLines(ctx, r.db, inv.Kind, inv.ID, inv.Lines); err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error) {
	return r.get(ctx, "invoiceRepo.GetByID",
		"SELECT * FROM invoices WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL", tenantID, id)
}

func (r *invoiceRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error) {
	return r.get(ctx, "invoiceRepo.GetForUpdate",
		"SELECT * FROM invoices WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL FOR UPDATE", tenantID, id)
}

func (r *invoiceRepo) get(ctx context.Context, op, query string, tenantID, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := sqlx.GetContext(ctx, r.db, &inv, query, id, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lines, err := listLines(ctx, r.db, inv.Kind, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	inv.Lines = lines
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.ListFilter) ([]domain.Invoice, int, error) {
	var invoices []domain.Invoice
	total, err := listPage(ctx, r.db, &invoices, "invoices", tenantID,
		statusKindFilter{status: filter.Status, kind: filter.Kind}, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) UpdateDraft(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET client_id = $1, currency = $2, notes = $3,
			subtotal_cents = $4, tax_cents = $5, total_cents = $6, updated_at = $7
		 WHERE id = $8 AND tenant_id = $9 AND status = 'DRAFT' AND deleted_at IS NULL`,
		inv.ClientID, inv.Currency, inv.Notes,
		inv.SubtotalCents, inv.TaxCents, inv.TotalCents, inv.UpdatedAt,
		inv.ID, inv.TenantID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateDraft: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	if err := replaceLines(ctx, r.db, inv.Kind, inv.ID, inv.Lines); err != nil {
		return fmt.Errorf("invoiceRepo.UpdateDraft: %w", err)
	}
	return nil
}

// MarkIssued writes number, status and dates in one statement. An invoice that
// already carries a number is never renumbered.
func (r *invoiceRepo) MarkIssued(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET number = $1, sequence = $2, year = $3, status = $4,
			issue_date = $5, due_date = $6, updated_at = $7
		 WHERE id = $8 AND tenant_id = $9 AND number IS NULL AND deleted_at IS NULL`,
		inv.Number, inv.Sequence, inv.Year, inv.Status, inv.IssueDate, inv.DueDate, inv.UpdatedAt,
		inv.ID, inv.TenantID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.MarkIssued: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) ApplyPayment(ctx context.Context, inv *domain.Invoice, p *domain.InvoicePayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoice_payments (id, tenant_id, invoice_id, amount_cents, paid_on, method, reference, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.TenantID, p.InvoiceID, p.AmountCents, p.PaidOn, p.Method, p.Reference, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.ApplyPayment insert: %w", err)
	}

	inv.UpdatedAt = p.CreatedAt
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET paid_cents = $1, status = $2, updated_at = $3
		 WHERE id = $4 AND tenant_id = $5 AND deleted_at IS NULL`,
		inv.PaidCents, inv.Status, inv.UpdatedAt, inv.ID, inv.TenantID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.ApplyPayment update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.InvoicePayment, error) {
	var payments []domain.InvoicePayment
	err := sqlx.SelectContext(ctx, r.db, &payments,
		`SELECT * FROM invoice_payments WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY paid_on, created_at`,
		tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListPayments: %w", err)
	}
	return payments, nil
}

func (r *invoiceRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND status = 'DRAFT' AND deleted_at IS NULL`,
		id, tenantID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.SoftDelete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
