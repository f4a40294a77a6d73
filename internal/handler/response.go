package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/middleware"
	"facturo/internal/port"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Validation and transition messages are returned to the caller verbatim.
func MapDomainError(err error) (status int, code, msg string) {
	var (
		verr *domain.ValidationError
		terr *domain.TransitionError
		xerr *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "VALIDATION_ERROR", verr.Error()
	case errors.As(err, &terr):
		return http.StatusConflict, "INVALID_TRANSITION", terr.Error()
	case errors.As(err, &xerr):
		return http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", xerr.Service + " failed"
	case errors.Is(err, domain.ErrTenantNotFound):
		return http.StatusServiceUnavailable, "TENANT_UNAVAILABLE", "tenant is not configured"
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, "CLIENT_NOT_FOUND", "client not found"
	case errors.Is(err, domain.ErrProviderNotFound):
		return http.StatusNotFound, "PROVIDER_NOT_FOUND", "provider not found"
	case errors.Is(err, domain.ErrTaxRateNotFound):
		return http.StatusNotFound, "TAX_RATE_NOT_FOUND", "tax rate not found"
	case errors.Is(err, domain.ErrQuoteNotFound):
		return http.StatusNotFound, "QUOTE_NOT_FOUND", "quote not found"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrPurchaseInvoiceNotFound):
		return http.StatusNotFound, "PURCHASE_INVOICE_NOT_FOUND", "purchase invoice not found"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "TEMPLATE_NOT_FOUND", "recurring template not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// errorResponder maps errors to responses and logs the ones that are ours.
type errorResponder struct {
	log *zap.Logger
}

// handle maps a domain error and sends the appropriate error response.
func (e errorResponder) handle(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		e.log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	RespondError(c, status, code, msg)
}

// bindJSON decodes the body into dst. Validation failures from the binding
// validator keep their field message; malformed JSON gets a generic one.
func (e errorResponder) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			e.handle(c, verr)
			return false
		}
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func (e errorResponder) bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return e.bindJSON(c, dst)
}

// requestScope extracts the tenant and the acting user.
// Returns false if either is missing (error response already written).
func requestScope(c *gin.Context) (*domain.Tenant, *uuid.UUID, bool) {
	tenant, err := middleware.GetTenant(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return nil, nil, false
	}
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return nil, nil, false
	}
	return tenant, &userID, true
}

// pathID parses the :id parameter. Returns false on a malformed UUID.
func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads offset and limit, clamping limit to 1..100.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// listFilter reads pagination plus the optional status and kind filters.
func listFilter(c *gin.Context) port.ListFilter {
	offset, limit := pagination(c)
	return port.ListFilter{
		Status: c.Query("status"),
		Kind:   c.Query("kind"),
		Offset: offset,
		Limit:  limit,
	}
}

// respondPDF streams a rendered document inline.
func respondPDF(c *gin.Context, filename string, pdf []byte) {
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
