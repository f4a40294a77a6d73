package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/middleware"
	"facturo/internal/service"
	"facturo/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	auth := new(mocks.MockAuthService)
	auth.On("ValidateToken", "good").Return(&service.Claims{UserID: userID, Email: "ana@acme.test", Role: domain.RoleMember}, nil)
	auth.On("ValidateToken", "expired").Return(nil, domain.ErrUnauthorized)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(auth))
	r.GET("/me", func(c *gin.Context) {
		id, err := middleware.GetUserID(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String()+" "+middleware.GetRole(c))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"rejected token", "Bearer expired", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID.String()+" member", w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin allowed", string(domain.RoleAdmin), http.StatusOK},
		{"member forbidden", string(domain.RoleMember), http.StatusForbidden},
		{"no role", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set(middleware.ContextKeyRole, tt.role)
				}
				c.Next()
			})
			r.POST("/admin/sequences/reset", middleware.RequireRole(domain.RoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serve(r, httptest.NewRequest(http.MethodPost, "/admin/sequences/reset", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCronSecret(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{"matching", "s3cret", "s3cret", http.StatusOK},
		{"wrong", "s3cret", "guess", http.StatusUnauthorized},
		{"missing", "s3cret", "", http.StatusUnauthorized},
		{"disabled", "", "anything", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/cron/recurring", middleware.CronSecret(tt.secret), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/cron/recurring", nil)
			if tt.header != "" {
				req.Header.Set(middleware.CronSecretHeader, tt.header)
			}
			assert.Equal(t, tt.wantStatus, serve(r, req).Code)
		})
	}
}

func TestTenantContext(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Name: "Acme SL"}

	ok := new(mocks.MockTenantService)
	ok.On("Current", mock.Anything).Return(tenant, nil)
	r := gin.New()
	r.Use(middleware.TenantContext(ok, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		got, err := middleware.GetTenant(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, got.Name)
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme SL", w.Body.String())

	missing := new(mocks.MockTenantService)
	missing.On("Current", mock.Anything).Return(nil, domain.ErrTenantNotFound)
	r = gin.New()
	r.Use(middleware.TenantContext(missing, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.ContextKeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := serve(r, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("nil map write") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
