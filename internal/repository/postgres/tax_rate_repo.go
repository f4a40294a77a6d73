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

type taxRateRepo struct {
	db sqlx.ExtContext
}

// NewTaxRateRepo creates a new PostgreSQL-backed TaxRateRepository.
func NewTaxRateRepo(db sqlx.ExtContext) port.TaxRateRepository {
	return &taxRateRepo{db: db}
}

func (r *taxRateRepo) Create(ctx context.Context, rate *domain.TaxRate) error {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}
	now := time.Now().UTC()
	rate.CreatedAt = now
	rate.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tax_rates (id, tenant_id, name, rate_percent, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rate.ID, rate.TenantID, rate.Name, rate.RatePercent, rate.IsActive, rate.CreatedAt, rate.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewValidationError("name", "a tax rate with this name already exists")
		}
		return fmt.Errorf("taxRateRepo.Create: %w", err)
	}
	return nil
}

func (r *taxRateRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.TaxRate, error) {
	var rate domain.TaxRate
	err := sqlx.GetContext(ctx, r.db, &rate,
		"SELECT * FROM tax_rates WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaxRateNotFound
		}
		return nil, fmt.Errorf("taxRateRepo.GetByID: %w", err)
	}
	return &rate, nil
}

func (r *taxRateRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.TaxRate, error) {
	var rates []domain.TaxRate
	err := sqlx.SelectContext(ctx, r.db, &rates,
		"SELECT * FROM tax_rates WHERE tenant_id = $1 ORDER BY name", tenantID)
	if err != nil {
		return nil, fmt.Errorf("taxRateRepo.List: %w", err)
	}
	return rates, nil
}

func (r *taxRateRepo) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.TaxRate, error) {
	out := make(map[uuid.UUID]domain.TaxRate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In("SELECT * FROM tax_rates WHERE tenant_id = ? AND id IN (?)", tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("taxRateRepo.GetByIDs build: %w", err)
	}
	var rates []domain.TaxRate
	if err := sqlx.SelectContext(ctx, r.db, &rates, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("taxRateRepo.GetByIDs: %w", err)
	}
	for _, rate := range rates {
		out[rate.ID] = rate
	}
	return out, nil
}
