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

// counterpartyTable holds the SQL shared by clients and providers, which have the same shape.
type counterpartyTable struct {
	db       sqlx.ExtContext
	table    string
	name     string
	notFound error
}

func (t counterpartyTable) create(ctx context.Context, c *domain.Counterparty) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (id, tenant_id, name, tax_id, email, address, payment_terms_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, t.table)
	_, err := t.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.Name, c.TaxID, c.Email, c.Address, c.PaymentTermsDays, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%sRepo.Create: %w", t.name, err)
	}
	return nil
}

func (t counterpartyTable) get(ctx context.Context, dest any, tenantID, id uuid.UUID) error {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1 AND tenant_id = $2", t.table)
	if err := sqlx.GetContext(ctx, t.db, dest, query, id, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t.notFound
		}
		return fmt.Errorf("%sRepo.GetByID: %w", t.name, err)
	}
	return nil
}

func (t counterpartyTable) list(ctx context.Context, dest any, tenantID uuid.UUID, offset, limit int) (int, error) {
	var total int
	err := sqlx.GetContext(ctx, t.db, &total,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE tenant_id = $1", t.table), tenantID)
	if err != nil {
		return 0, fmt.Errorf("%sRepo.List count: %w", t.name, err)
	}
	err = sqlx.SelectContext(ctx, t.db, dest,
		fmt.Sprintf("SELECT * FROM %s WHERE tenant_id = $1 ORDER BY name LIMIT $2 OFFSET $3", t.table),
		tenantID, limit, offset)
	if err != nil {
		return 0, fmt.Errorf("%sRepo.List: %w", t.name, err)
	}
	return total, nil
}

func (t counterpartyTable) update(ctx context.Context, c *domain.Counterparty) error {
	c.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET name = $1, tax_id = $2, email = $3, address = $4,
		payment_terms_days = $5, updated_at = $6 WHERE id = $7 AND tenant_id = $8`, t.table)
	result, err := t.db.ExecContext(ctx, query,
		c.Name, c.TaxID, c.Email, c.Address, c.PaymentTermsDays, c.UpdatedAt, c.ID, c.TenantID)
	if err != nil {
		return fmt.Errorf("%sRepo.Update: %w", t.name, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return t.notFound
	}
	return nil
}

func (t counterpartyTable) paymentTerms(ctx context.Context, tenantID, id uuid.UUID) (*int, error) {
	var days *int
	query := fmt.Sprintf("SELECT payment_terms_days FROM %s WHERE id = $1 AND tenant_id = $2", t.table)
	if err := sqlx.GetContext(ctx, t.db, &days, query, id, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, t.notFound
		}
		return nil, fmt.Errorf("%sRepo.PaymentTermsDays: %w", t.name, err)
	}
	return days, nil
}

func clientsTable(db sqlx.ExtContext) counterpartyTable {
	return counterpartyTable{db: db, table: "clients", name: "client", notFound: domain.ErrClientNotFound}
}

func providersTable(db sqlx.ExtContext) counterpartyTable {
	return counterpartyTable{db: db, table: "providers", name: "provider", notFound: domain.ErrProviderNotFound}
}

type clientRepo struct {
	t counterpartyTable
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db sqlx.ExtContext) port.ClientRepository {
	return &clientRepo{t: clientsTable(db)}
}

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	return r.t.create(ctx, &client.Counterparty)
}

func (r *clientRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	if err := r.t.get(ctx, &client, tenantID, id); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	var clients []domain.Client
	total, err := r.t.list(ctx, &clients, tenantID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	return r.t.update(ctx, &client.Counterparty)
}

type providerRepo struct {
	t counterpartyTable
}

// NewProviderRepo creates a new PostgreSQL-backed ProviderRepository.
func NewProviderRepo(db sqlx.ExtContext) port.ProviderRepository {
	return &providerRepo{t: providersTable(db)}
}

func (r *providerRepo) Create(ctx context.Context, provider *domain.Provider) error {
	return r.t.create(ctx, &provider.Counterparty)
}

func (r *providerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Provider, error) {
	var provider domain.Provider
	if err := r.t.get(ctx, &provider, tenantID, id); err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepo) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Provider, int, error) {
	var providers []domain.Provider
	total, err := r.t.list(ctx, &providers, tenantID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}

func (r *providerRepo) Update(ctx context.Context, provider *domain.Provider) error {
	return r.t.update(ctx, &provider.Counterparty)
}

type counterpartyDirectory struct {
	clients   counterpartyTable
	providers counterpartyTable
}

// NewCounterpartyDirectory creates a payment terms lookup over clients and providers.
func NewCounterpartyDirectory(db sqlx.ExtContext) port.CounterpartyDirectory {
	return &counterpartyDirectory{clients: clientsTable(db), providers: providersTable(db)}
}

func (d *counterpartyDirectory) PaymentTermsDays(ctx context.Context, tenantID uuid.UUID, kind domain.CounterpartyKind, id uuid.UUID) (*int, error) {
	switch kind {
	case domain.CounterpartyClient:
		return d.clients.paymentTerms(ctx, tenantID, id)
	case domain.CounterpartyProvider:
		return d.providers.paymentTerms(ctx, tenantID, id)
	default:
		return nil, fmt.Errorf("counterpartyDirectory.PaymentTermsDays: unknown kind %q", kind)
	}
}
