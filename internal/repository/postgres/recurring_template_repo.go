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

type recurringTemplateRepo struct {
	db sqlx.ExtContext
}

// NewRecurringTemplateRepo creates a new PostgreSQL-backed RecurringTemplateRepository.
func NewRecurringTemplateRepo(db sqlx.ExtContext) port.RecurringTemplateRepository {
	return &recurringTemplateRepo{db: db}
}

func (r *recurringTemplateRepo) Create(ctx context.Context, tpl *domain.RecurringTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_templates (
			id, tenant_id, client_id, name, day_of_month, next_run_date, mode, status,
			currency, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tpl.ID, tpl.TenantID, tpl.ClientID, tpl.Name, tpl.DayOfMonth, tpl.NextRunDate, tpl.Mode, tpl.Status,
		tpl.Currency, tpl.Notes, tpl.CreatedAt, tpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("recurringTemplateRepo.Create: %w", err)
	}
	if err := r.replaceLines(ctx, tpl); err != nil {
		return fmt.Errorf("recurringTemplateRepo.Create: %w", err)
	}
	return nil
}

func (r *recurringTemplateRepo) replaceLines(ctx context.Context, tpl *domain.RecurringTemplate) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM recurring_template_lines WHERE template_id = $1", tpl.ID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	for i := range tpl.Lines {
		l := &tpl.Lines[i]
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.TemplateID = tpl.ID
		l.Position = i + 1
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO recurring_template_lines (id, template_id, position, description, quantity, unit_price_cents, tax_rate_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, l.TemplateID, l.Position, l.Description, l.Quantity, l.UnitPriceCents, l.TaxRateID)
		if err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
	}
	return nil
}

func (r *recurringTemplateRepo) loadLines(ctx context.Context, tpl *domain.RecurringTemplate) error {
	var lines []domain.RecurringTemplateLine
	err := sqlx.SelectContext(ctx, r.db, &lines,
		"SELECT * FROM recurring_template_lines WHERE template_id = $1 ORDER BY position", tpl.ID)
	if err != nil {
		return err
	}
	tpl.Lines = lines
	return nil
}

func (r *recurringTemplateRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	var tpl domain.RecurringTemplate
	err := sqlx.GetContext(ctx, r.db, &tpl,
		"SELECT * FROM recurring_templates WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("recurringTemplateRepo.GetByID: %w", err)
	}
	if err := r.loadLines(ctx, &tpl); err != nil {
		return nil, fmt.Errorf("recurringTemplateRepo.GetByID lines: %w", err)
	}
	return &tpl, nil
}

func (r *recurringTemplateRepo) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.RecurringTemplate, int, error) {
	var total int
	err := sqlx.GetContext(ctx, r.db, &total,
		"SELECT COUNT(*) FROM recurring_templates WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("recurringTemplateRepo.List count: %w", err)
	}

	var templates []domain.RecurringTemplate
	err = sqlx.SelectContext(ctx, r.db, &templates,
		`SELECT * FROM recurring_templates WHERE tenant_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("recurringTemplateRepo.List: %w", err)
	}
	return templates, total, nil
}

func (r *recurringTemplateRepo) ListDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]domain.RecurringTemplate, error) {
	var templates []domain.RecurringTemplate
	err := sqlx.SelectContext(ctx, r.db, &templates,
		`SELECT * FROM recurring_templates
		 WHERE tenant_id = $1 AND status = 'ACTIVE' AND next_run_date <= $2
		 ORDER BY next_run_date, id`,
		tenantID, now)
	if err != nil {
		return nil, fmt.Errorf("recurringTemplateRepo.ListDue: %w", err)
	}
	for i := range templates {
		if err := r.loadLines(ctx, &templates[i]); err != nil {
			return nil, fmt.Errorf("recurringTemplateRepo.ListDue lines: %w", err)
		}
	}
	return templates, nil
}

func (r *recurringTemplateRepo) Update(ctx context.Context, tpl *domain.RecurringTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE recurring_templates SET client_id = $1, name = $2, day_of_month = $3, next_run_date = $4,
			mode = $5, currency = $6, notes = $7, updated_at = $8
		 WHERE id = $9 AND tenant_id = $10`,
		tpl.ClientID, tpl.Name, tpl.DayOfMonth, tpl.NextRunDate,
		tpl.Mode, tpl.Currency, tpl.Notes, tpl.UpdatedAt,
		tpl.ID, tpl.TenantID)
	if err != nil {
		return fmt.Errorf("recurringTemplateRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	if err := r.replaceLines(ctx, tpl); err != nil {
		return fmt.Errorf("recurringTemplateRepo.Update: %w", err)
	}
	return nil
}

func (r *recurringTemplateRepo) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.TemplateStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE recurring_templates SET status = $1, updated_at = NOW() WHERE id = $2 AND tenant_id = $3",
		status, id, tenantID)
	if err != nil {
		return fmt.Errorf("recurringTemplateRepo.SetStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *recurringTemplateRepo) AdvanceNextRunDate(ctx context.Context, tenantID, id uuid.UUID, from, to time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE recurring_templates SET next_run_date = $1, updated_at = NOW()
		 WHERE id = $2 AND tenant_id = $3 AND next_run_date = $4`,
		to, id, tenantID, from)
	if err != nil {
		return false, fmt.Errorf("recurringTemplateRepo.AdvanceNextRunDate: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}
