package port

import (
	"context"

	"facturo/internal/domain"
)

// AuditRecorder appends audit events. It is fire-and-forget: implementations
// must not report failures back into the calling operation.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent)
}
