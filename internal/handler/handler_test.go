package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
	"facturo/internal/handler"
	"facturo/internal/middleware"
	"facturo/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	binding.Validator = service.BindingValidator{}
}

var testTenant = &domain.Tenant{ID: uuid.New(), Name: "Acme SL", Currency: "EUR"}

// newTestRouter injects the tenant and an authenticated admin ahead of the handlers.
func newTestRouter(userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyTenant, testTenant)
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyRole, string(domain.RoleAdmin))
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *handler.APIError `json:"error"`
	Meta    *handler.PagMeta  `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
