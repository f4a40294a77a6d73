package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"facturo/internal/domain"
	"facturo/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.NewValidationError("lines", "at least one line is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"transition", &domain.TransitionError{Entity: domain.EntityInvoice, From: "PAID", Action: domain.ActionEmit}, http.StatusConflict, "INVALID_TRANSITION"},
		{"wrapped transition", fmt.Errorf("emit: %w", &domain.TransitionError{Entity: domain.EntityQuote, Action: domain.ActionConvert}), http.StatusConflict, "INVALID_TRANSITION"},
		{"external", &domain.ExternalServiceError{Service: "email", Err: errors.New("throttled")}, http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"},
		{"invoice not found", domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{"quote not found", domain.ErrQuoteNotFound, http.StatusNotFound, "QUOTE_NOT_FOUND"},
		{"run not found", domain.ErrRecurringRunNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"tenant missing", domain.ErrTenantNotFound, http.StatusServiceUnavailable, "TENANT_UNAVAILABLE"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapDomainError_InternalDetailsHidden(t *testing.T) {
	_, _, msg := handler.MapDomainError(errors.New("password=hunter2 host=db"))
	assert.Equal(t, "an internal error occurred", msg)

	_, _, msg = handler.MapDomainError(&domain.ExternalServiceError{Service: "pdf renderer", Err: errors.New("font cache at /tmp/x")})
	assert.Equal(t, "pdf renderer failed", msg)
}
