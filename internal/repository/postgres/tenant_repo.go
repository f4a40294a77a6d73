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

type tenantRepo struct {
	db sqlx.ExtContext
}

// NewTenantRepo creates a new PostgreSQL-backed TenantRepository.
func NewTenantRepo(db sqlx.ExtContext) port.TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	query := `INSERT INTO tenants (id, name, tax_id, email, address, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		tenant.ID, tenant.Name, tenant.TaxID, tenant.Email, tenant.Address, tenant.Currency,
		tenant.CreatedAt, tenant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("tenantRepo.Create: %w", err)
	}
	return nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := sqlx.GetContext(ctx, r.db, &tenant, "SELECT * FROM tenants WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", err)
	}
	return &tenant, nil
}

func (r *tenantRepo) GetSingle(ctx context.Context) (*domain.Tenant, error) {
	var tenants []domain.Tenant
	err := sqlx.SelectContext(ctx, r.db, &tenants, "SELECT * FROM tenants ORDER BY created_at LIMIT 2")
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.GetSingle: %w", err)
	}
	switch len(tenants) {
	case 0:
		return nil, domain.ErrTenantNotFound
	case 1:
		return &tenants[0], nil
	default:
		return nil, fmt.Errorf("tenantRepo.GetSingle: more than one tenant, set tenant.id")
	}
}
