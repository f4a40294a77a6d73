package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"facturo/internal/domain"
	"facturo/internal/port"
)

type auditRepo struct {
	db sqlx.ExtContext
}

// NewAuditRepo creates a new PostgreSQL-backed AuditRepository.
func NewAuditRepo(db sqlx.ExtContext) port.AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, event *domain.AuditEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	metadata := event.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, tenant_id, actor_id, entity_type, entity_id, action, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.TenantID, event.ActorID, event.EntityType, event.EntityID, event.Action,
		string(metadata), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("auditRepo.Create: %w", err)
	}
	return nil
}

func (r *auditRepo) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, offset, limit int) ([]domain.AuditEvent, int, error) {
	var total int
	err := sqlx.GetContext(ctx, r.db, &total,
		`SELECT COUNT(*) FROM audit_events WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3`,
		tenantID, entityType, entityID)
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.ListByEntity count: %w", err)
	}

	var events []domain.AuditEvent
	err = sqlx.SelectContext(ctx, r.db, &events,
		`SELECT * FROM audit_events
		 WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		 ORDER BY created_at DESC
		 LIMIT $4 OFFSET $5`,
		tenantID, entityType, entityID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("auditRepo.ListByEntity: %w", err)
	}
	return events, total, nil
}
