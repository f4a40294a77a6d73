package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// AuditService records audit events and serves the audit trail of an entity.
type AuditService interface {
	port.AuditRecorder
	ListByEntity(ctx context.Context, tenant *domain.Tenant, entityType string, entityID uuid.UUID, offset, limit int) ([]domain.AuditEvent, int, error)
}

type auditService struct {
	repo port.AuditRepository
	log  *zap.Logger
}

// NewAuditService creates a new AuditService implementation.
func NewAuditService(repo port.AuditRepository, log *zap.Logger) AuditService {
	return &auditService{repo: repo, log: log.Named("audit")}
}

// Record writes event and swallows failures after logging them.
func (s *auditService) Record(ctx context.Context, event domain.AuditEvent) {
	// The caller's transaction has already committed; a canceled request must not drop the trail.
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.Create(ctx, &event); err != nil {
		s.log.Error("failed to write audit event",
			zap.String("entity_type", event.EntityType),
			zap.String("entity_id", event.EntityID.String()),
			zap.String("action", string(event.Action)),
			zap.Error(err))
	}
}

func (s *auditService) ListByEntity(ctx context.Context, tenant *domain.Tenant, entityType string, entityID uuid.UUID, offset, limit int) ([]domain.AuditEvent, int, error) {
	return s.repo.ListByEntity(ctx, tenant.ID, entityType, entityID, offset, limit)
}

func newAuditEvent(tenantID uuid.UUID, actorID *uuid.UUID, entityType string, entityID uuid.UUID, action domain.AuditAction, metadata map[string]any) domain.AuditEvent {
	raw := json.RawMessage("{}")
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			raw = b
		}
	}
	return domain.AuditEvent{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Metadata:   raw,
		CreatedAt:  time.Now().UTC(),
	}
}
