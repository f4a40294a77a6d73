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

type purchaseInvoiceRepo struct {
	db sqlx.ExtContext
}

// NewPurchaseInvoiceRepo creates a new PostgreSQL-backed PurchaseInvoiceRepository.
func NewPurchaseInvoiceRepo(db sqlx.ExtContext) port.PurchaseInvoiceRepository {
	return &purchaseInvoiceRepo{db: db}
}

func (r *purchaseInvoiceRepo) Create(ctx context.Context, p *domain.PurchaseInvoice) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO purchase_invoices (
			id, tenant_id, provider_id, supplier_reference, status, issue_date, currency, notes,
			subtotal_cents, tax_cents, total_cents, paid_cents, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.TenantID, p.ProviderID, p.SupplierReference, p.Status, p.IssueDate, p.Currency, p.Notes,
		p.SubtotalCents, p.TaxCents, p.TotalCents, p.PaidCents, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("purchaseInvoiceRepo.Create: %w", err)
	}
	if err := replaceLines(ctx, r.db, domain.DocTypePurchaseInvoice, p.ID, p.Lines); err != nil {
		return fmt.Errorf("purchaseInvoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *purchaseInvoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	return r.get(ctx, "purchaseInvoiceRepo.GetByID",
		"SELECT * FROM purchase_invoices WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL", tenantID, id)
}

func (r *purchaseInvoiceRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	return r.get(ctx, "purchaseInvoiceRepo.GetForUpdate",
		"SELECT * FROM purchase_invoices WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL FOR UPDATE", tenantID, id)
}

func (r *purchaseInvoiceRepo) get(ctx context.Context, op, query string, tenantID, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	var p domain.PurchaseInvoice
	if err := sqlx.GetContext(ctx, r.db, &p, query, id, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPurchaseInvoiceNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lines, err := listLines(ctx, r.db, domain.DocTypePurchaseInvoice, p.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Lines = lines
	return &p, nil
}

func (r *purchaseInvoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.ListFilter) ([]domain.PurchaseInvoice, int, error) {
	var purchases []domain.PurchaseInvoice
	total, err := listPage(ctx, r.db, &purchases, "purchase_invoices", tenantID,
		statusKindFilter{status: filter.Status}, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("purchaseInvoiceRepo.List: %w", err)
	}
	return purchases, total, nil
}

func (r *purchaseInvoiceRepo) UpdateDraft(ctx context.Context, p *domain.PurchaseInvoice) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE purchase_invoices SET provider_id = $1, supplier_reference = $2, issue_date = $3,
			currency = $4, notes = $5, subtotal_cents = $6, tax_cents = $7, total_cents = $8, updated_at = $9
		 WHERE id = $10 AND tenant_id = $11 AND status = 'DRAFT' AND deleted_at IS NULL`,
		p.ProviderID, p.SupplierReference, p.IssueDate,
		p.Currency, p.Notes, p.SubtotalCents, p.TaxCents, p.TotalCents, p.UpdatedAt,
		p.ID, p.TenantID)
	if err != nil {
		return fmt.Errorf("purchaseInvoiceRepo.UpdateDraft: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPurchaseInvoiceNotFound
	}
	if err := replaceLines(ctx, r.db, domain.DocTypePurchaseInvoice, p.ID, p.Lines); err != nil {
		return fmt.Errorf("purchaseInvoiceRepo.UpdateDraft: %w", err)
	}
	return nil
}

func (r *purchaseInvoiceRepo) MarkBooked(ctx context.Context, p *domain.PurchaseInvoice) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE purchase_invoices SET number = $1, sequence = $2, year = $3, status = $4,
			issue_date = $5, due_date = $6, updated_at = $7
		 WHERE id = $8 AND tenant_id = $9 AND number IS NULL AND deleted_at IS NULL`,
		p.Number, p.Sequence, p.Year, p.Status, p.IssueDate, p.DueDate, p.UpdatedAt,
		p.ID, p.TenantID)
	if err != nil {
		return fmt.Errorf("purchaseInvoiceRepo.MarkBooked: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPurchaseInvoiceNotFound
	}
	return nil
}

func (r *purchaseInvoiceRepo) MarkPaid(ctx context.Context, p *domain.PurchaseInvoice) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE purchase_invoices SET status = $1, paid_cents = $2, updated_at = $3
		 WHERE id = $4 AND tenant_id = $5 AND deleted_at IS NULL`,
		p.Status, p.PaidCents, p.UpdatedAt, p.ID, p.TenantID)
	if err != nil {
		return fmt.Errorf("purchaseInvoiceRepo.MarkPaid: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPurchaseInvoiceNotFound
	}
	return nil
}

func (r *purchaseInvoiceRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE purchase_invoices SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND status = 'DRAFT' AND deleted_at IS NULL`,
		id, tenantID)
	if err != nil {
		return fmt.Errorf("purchaseInvoiceRepo.SoftDelete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPurchaseInvoiceNotFound
	}
	return nil
}
