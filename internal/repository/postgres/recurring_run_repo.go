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

type recurringRunRepo struct {
	db sqlx.ExtContext
}

// NewRecurringRunRepo creates a new PostgreSQL-backed RecurringRunRepository.
func NewRecurringRunRepo(db sqlx.ExtContext) port.RecurringRunRepository {
	return &recurringRunRepo{db: db}
}

func (r *recurringRunRepo) ExistsByKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists,
		"SELECT EXISTS(SELECT 1 FROM recurring_runs WHERE idempotency_key = $1)", key)
	if err != nil {
		return false, fmt.Errorf("recurringRunRepo.ExistsByKey: %w", err)
	}
	return exists, nil
}

// Claim relies on the unique idempotency_key: of two concurrent claims for the
// same key exactly one gets a row back.
func (r *recurringRunRepo) Claim(ctx context.Context, run *domain.RecurringRun) (bool, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	var id uuid.UUID
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO recurring_runs (
			id, tenant_id, template_id, run_date, status, generated_invoice_id,
			error_message, idempotency_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id`,
		run.ID, run.TenantID, run.TemplateID, run.RunDate, run.Status, run.GeneratedInvoiceID,
		run.ErrorMessage, run.IdempotencyKey, run.CreatedAt, run.UpdatedAt).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("recurringRunRepo.Claim: %w", err)
	}
	return true, nil
}

func (r *recurringRunRepo) Finish(ctx context.Context, run *domain.RecurringRun) error {
	run.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE recurring_runs SET status = $1, generated_invoice_id = $2, error_message = $3, updated_at = $4
		 WHERE id = $5`,
		run.Status, run.GeneratedInvoiceID, run.ErrorMessage, run.UpdatedAt, run.ID)
	if err != nil {
		return fmt.Errorf("recurringRunRepo.Finish: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrRecurringRunNotFound
	}
	return nil
}

func (r *recurringRunRepo) ListByTemplate(ctx context.Context, tenantID, templateID uuid.UUID, offset, limit int) ([]domain.RecurringRun, int, error) {
	var total int
	err := sqlx.GetContext(ctx, r.db, &total,
		"SELECT COUNT(*) FROM recurring_runs WHERE tenant_id = $1 AND template_id = $2",
		tenantID, templateID)
	if err != nil {
		return nil, 0, fmt.Errorf("recurringRunRepo.ListByTemplate count: %w", err)
	}

	var runs []domain.RecurringRun
	err = sqlx.SelectContext(ctx, r.db, &runs,
		`SELECT * FROM recurring_runs WHERE tenant_id = $1 AND template_id = $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		tenantID, templateID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("recurringRunRepo.ListByTemplate: %w", err)
	}
	return runs, total, nil
}
