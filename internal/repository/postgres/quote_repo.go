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

type quoteRepo struct {
	db sqlx.ExtContext
}

// NewQuoteRepo creates a new PostgreSQL-backed QuoteRepository.
func NewQuoteRepo(db sqlx.ExtContext) port.QuoteRepository {
	return &quoteRepo{db: db}
}

func (r *quoteRepo) Create(ctx context.Context, q *domain.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quotes (
			id, tenant_id, client_id, status, valid_until, currency, notes,
			subtotal_cents, tax_cents, total_cents, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		q.ID, q.TenantID, q.ClientID, q.Status, q.ValidUntil, q.Currency, q.Notes,
		q.SubtotalCents, q.TaxCents, q.TotalCents, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("quoteRepo.Create: %w", err)
	}
	if err := replaceLines(ctx, r.db, domain.DocTypeQuote, q.ID, q.Lines); err != nil {
		return fmt.Errorf("quoteRepo.Create: %w", err)
	}
	return nil
}

func (r *quoteRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Quote, error) {
	return r.get(ctx, "quoteRepo.GetByID",
		"SELECT * FROM quotes WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL", tenantID, id)
}

func (r *quoteRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Quote, error) {
	return r.get(ctx, "quoteRepo.GetForUpdate",
		"SELECT * FROM quotes WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL FOR UPDATE", tenantID, id)
}

func (r *quoteRepo) get(ctx context.Context, op, query string, tenantID, id uuid.UUID) (*domain.Quote, error) {
	var q domain.Quote
	if err := sqlx.GetContext(ctx, r.db, &q, query, id, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lines, err := listLines(ctx, r.db, domain.DocTypeQuote, q.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	q.Lines = lines
	return &q, nil
}

func (r *quoteRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.ListFilter) ([]domain.Quote, int, error) {
	var quotes []domain.Quote
	total, err := listPage(ctx, r.db, &quotes, "quotes", tenantID,
		statusKindFilter{status: filter.Status}, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("quoteRepo.List: %w", err)
	}
	return quotes, total, nil
}

func (r *quoteRepo) UpdateDraft(ctx context.Context, q *domain.Quote) error {
	q.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET client_id = $1, valid_until = $2, currency = $3, notes = $4,
			subtotal_cents = $5, tax_cents = $6, total_cents = $7, updated_at = $8
		 WHERE id = $9 AND tenant_id = $10 AND status = 'DRAFT' AND deleted_at IS NULL`,
		q.ClientID, q.ValidUntil, q.Currency, q.Notes,
		q.SubtotalCents, q.TaxCents, q.TotalCents, q.UpdatedAt,
		q.ID, q.TenantID)
	if err != nil {
		return fmt.Errorf("quoteRepo.UpdateDraft: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotFound
	}
	if err := replaceLines(ctx, r.db, domain.DocTypeQuote, q.ID, q.Lines); err != nil {
		return fmt.Errorf("quoteRepo.UpdateDraft: %w", err)
	}
	return nil
}

// MarkSent writes the number and the SENT status in one statement. A quote
// that already carries a number is never renumbered.
func (r *quoteRepo) MarkSent(ctx context.Context, q *domain.Quote) error {
	q.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET number = $1, sequence = $2, year = $3, status = $4,
			issue_date = $5, valid_until = $6, updated_at = $7
		 WHERE id = $8 AND tenant_id = $9 AND number IS NULL AND deleted_at IS NULL`,
		q.Number, q.Sequence, q.Year, q.Status, q.IssueDate, q.ValidUntil, q.UpdatedAt,
		q.ID, q.TenantID)
	if err != nil {
		return fmt.Errorf("quoteRepo.MarkSent: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}

func (r *quoteRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.QuoteStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND tenant_id = $3 AND deleted_at IS NULL`,
		status, id, tenantID)
	if err != nil {
		return fmt.Errorf("quoteRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}

func (r *quoteRepo) SetConverted(ctx context.Context, tenantID, id, invoiceID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET converted_invoice_id = $1, updated_at = NOW()
		 WHERE id = $2 AND tenant_id = $3 AND converted_invoice_id IS NULL AND deleted_at IS NULL`,
		invoiceID, id, tenantID)
	if err != nil {
		return false, fmt.Errorf("quoteRepo.SetConverted: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (r *quoteRepo) ListExpirable(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := sqlx.SelectContext(ctx, r.db, &quotes,
		`SELECT * FROM quotes
		 WHERE tenant_id = $1 AND status IN ('SENT', 'ACCEPTED') AND converted_invoice_id IS NULL
		   AND valid_until < $2 AND deleted_at IS NULL
		 ORDER BY valid_until`,
		tenantID, before)
	if err != nil {
		return nil, fmt.Errorf("quoteRepo.ListExpirable: %w", err)
	}
	return quotes, nil
}

func (r *quoteRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotes SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND status = 'DRAFT' AND deleted_at IS NULL`,
		id, tenantID)
	if err != nil {
		return fmt.Errorf("quoteRepo.SoftDelete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}
