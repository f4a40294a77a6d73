package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/service"
)

const ContextKeyTenant = "tenant"

// TenantContext loads the served tenant and stores it on the request.
// Every downstream handler receives it explicitly.
func TenantContext(tenants service.TenantService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := tenants.Current(c.Request.Context())
		if err != nil {
			log.Error("failed to resolve tenant", zap.Error(err))
			abort(c, http.StatusServiceUnavailable, "TENANT_UNAVAILABLE", "tenant is not configured")
			return
		}
		c.Set(ContextKeyTenant, tenant)
		c.Next()
	}
}

// GetTenant extracts the tenant from the Gin context.
func GetTenant(c *gin.Context) (*domain.Tenant, error) {
	val, exists := c.Get(ContextKeyTenant)
	if !exists {
		return nil, domain.ErrUnauthorized
	}
	return val.(*domain.Tenant), nil
}
