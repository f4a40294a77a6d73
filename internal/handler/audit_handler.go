package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/service"
)

var auditEntityTypes = map[string]bool{
	domain.EntityQuote:             true,
	domain.EntityInvoice:           true,
	domain.EntityPurchaseInvoice:   true,
	domain.EntityRecurringTemplate: true,
	domain.EntitySequenceCounter:   true,
	domain.EntityClient:            true,
	domain.EntityProvider:          true,
	domain.EntityTaxRate:           true,
}

// AuditHandler exposes the audit trail of an entity.
type AuditHandler struct {
	errorResponder
	audit service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit service.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{errorResponder: errorResponder{log: log}, audit: audit}
}

// List handles GET /api/v1/audit/:entity_type/:id
// @Summary List audit events of an entity
// @Tags audit
// @Produce json
// @Param entity_type path string true "Entity type, e.g. invoice"
// @Param id path string true "Entity ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.AuditEvent,meta=PagMeta} "Audit events"
// @Failure 400 {object} ErrorResponseBody "Unknown entity type"
// @Security BearerAuth
// @Router /audit/{entity_type}/{id} [get]
func (h *AuditHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	entityType := c.Param("entity_type")
	if !auditEntityTypes[entityType] {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "entity_type: unknown entity type")
		return
	}
	id, ok := pathID(c, entityType)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	events, total, err := h.audit.ListByEntity(c.Request.Context(), tenant, entityType, id, offset, limit)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, events, PagMeta{Total: total, Offset: offset, Limit: limit})
}
