package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/handler"
	"facturo/internal/service"
	"facturo/mocks"
)

func setupInvoiceRouter(invoices *mocks.MockInvoiceService) (http.Handler, uuid.UUID) {
	userID := uuid.New()
	r := newTestRouter(userID)
	h := handler.NewInvoiceHandler(invoices, zap.NewNop())
	r.POST("/invoices/:id/emit", h.Emit)
	r.POST("/invoices/:id/payments", h.RecordPayment)
	return r, userID
}

func TestInvoiceHandler_Emit(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	r, userID := setupInvoiceRouter(invoices)
	id := uuid.New()
	number := "F26/07"

	invoices.On("Emit", mock.Anything, testTenant, &userID, id, service.EmitInput{}).
		Return(&domain.Invoice{ID: id, Status: domain.InvoiceStatusIssued, Numbering: domain.Numbering{Number: &number}}, nil)

	w := doJSON(r, http.MethodPost, "/invoices/"+id.String()+"/emit", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"number":"F26/07"`)
	invoices.AssertExpectations(t)
}

func TestInvoiceHandler_Emit_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not a draft", &domain.TransitionError{Entity: domain.EntityInvoice, From: "ISSUED", Action: domain.ActionEmit}, http.StatusConflict, "INVALID_TRANSITION"},
		{"missing", domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{"no lines", domain.NewValidationError("lines", "at least one line is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices := new(mocks.MockInvoiceService)
			r, _ := setupInvoiceRouter(invoices)
			invoices.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doJSON(r, http.MethodPost, "/invoices/"+uuid.NewString()+"/emit", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestInvoiceHandler_Emit_InvalidID(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	r, _ := setupInvoiceRouter(invoices)

	w := doJSON(r, http.MethodPost, "/invoices/not-a-uuid/emit", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
	invoices.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_RecordPayment_BindingValidation(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	r, _ := setupInvoiceRouter(invoices)

	w := doJSON(r, http.MethodPost, "/invoices/"+uuid.NewString()+"/payments", map[string]any{"amount_cents": 0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Message, "amount_cents")
	invoices.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_RecordPayment_MalformedBody(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	r, _ := setupInvoiceRouter(invoices)

	w := doJSON(r, http.MethodPost, "/invoices/"+uuid.NewString()+"/payments", "not an object")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Message, "invalid request body")
}
