package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"facturo/internal/domain"
	"facturo/internal/port"
)

type sequenceRepo struct {
	db sqlx.ExtContext
}

// NewSequenceRepo creates a new PostgreSQL-backed SequenceRepository.
func NewSequenceRepo(db sqlx.ExtContext) port.SequenceRepository {
	return &sequenceRepo{db: db}
}

// Next increments the counter for the key and returns the new value. The
// upsert holds the counter row lock until the surrounding transaction ends, so
// concurrent callers serialise here and a rollback gives the number back.
func (r *sequenceRepo) Next(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType) (int, error) {
	var next int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO sequence_counters (tenant_id, year, doc_type, current_number, updated_at)
		 VALUES ($1, $2, $3, 1, NOW())
		 ON CONFLICT (tenant_id, year, doc_type)
		 DO UPDATE SET current_number = sequence_counters.current_number + 1, updated_at = NOW()
		 RETURNING current_number`,
		tenantID, year, docType).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("sequenceRepo.Next: %w", err)
	}
	return next, nil
}

// Get returns the counter, or a zero counter when nothing was issued yet.
func (r *sequenceRepo) Get(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType) (*domain.SequenceCounter, error) {
	var counter domain.SequenceCounter
	err := sqlx.GetContext(ctx, r.db, &counter,
		`SELECT * FROM sequence_counters WHERE tenant_id = $1 AND year = $2 AND doc_type = $3`,
		tenantID, year, docType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.SequenceCounter{TenantID: tenantID, Year: year, DocType: docType}, nil
		}
		return nil, fmt.Errorf("sequenceRepo.Get: %w", err)
	}
	return &counter, nil
}

func (r *sequenceRepo) ListByYear(ctx context.Context, tenantID uuid.UUID, year int) ([]domain.SequenceCounter, error) {
	var counters []domain.SequenceCounter
	err := sqlx.SelectContext(ctx, r.db, &counters,
		`SELECT * FROM sequence_counters WHERE tenant_id = $1 AND year = $2 ORDER BY doc_type`,
		tenantID, year)
	if err != nil {
		return nil, fmt.Errorf("sequenceRepo.ListByYear: %w", err)
	}
	return counters, nil
}

func (r *sequenceRepo) Set(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType, value int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sequence_counters (tenant_id, year, doc_type, current_number, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (tenant_id, year, doc_type)
		 DO UPDATE SET current_number = EXCLUDED.current_number, updated_at = NOW()`,
		tenantID, year, docType, value)
	if err != nil {
		return fmt.Errorf("sequenceRepo.Set: %w", err)
	}
	return nil
}

func (r *sequenceRepo) CountIssuedAbove(ctx context.Context, tenantID uuid.UUID, year int, docType domain.DocType, value int) (int, error) {
	var query string
	args := []any{tenantID, year, value}
	switch docType {
	case domain.DocTypeQuote:
		query = `SELECT COUNT(*) FROM quotes
			WHERE tenant_id = $1 AND year = $2 AND sequence > $3 AND deleted_at IS NULL`
	case domain.DocTypeInvoice, domain.DocTypeCreditNote:
		query = `SELECT COUNT(*) FROM invoices
			WHERE tenant_id = $1 AND year = $2 AND sequence > $3 AND kind = $4 AND deleted_at IS NULL`
		args = append(args, docType)
	case domain.DocTypePurchaseInvoice:
		query = `SELECT COUNT(*) FROM purchase_invoices
			WHERE tenant_id = $1 AND year = $2 AND sequence > $3 AND deleted_at IS NULL`
	default:
		return 0, fmt.Errorf("sequenceRepo.CountIssuedAbove: unknown doc type %q", docType)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return 0, fmt.Errorf("sequenceRepo.CountIssuedAbove: %w", err)
	}
	return count, nil
}
