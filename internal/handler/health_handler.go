package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"facturo/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db      *sqlx.DB
	tenants service.TenantService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, tenants service.TenantService) *HealthHandler {
	return &HealthHandler{db: db, tenants: tenants}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz. The process is ready once the database
// answers and the served tenant exists.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "database not reachable"})
		return
	}
	if _, err := h.tenants.Current(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "tenant not configured"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
