package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/handler"
	"facturo/internal/port"
	"facturo/internal/service"
	"facturo/mocks"
)

func setupPurchaseRouter(purchases *mocks.MockPurchaseInvoiceService) (http.Handler, uuid.UUID) {
	userID := uuid.New()
	r := newTestRouter(userID)
	h := handler.NewPurchaseInvoiceHandler(purchases, zap.NewNop())
	r.GET("/purchase-invoices", h.List)
	r.POST("/purchase-invoices/:id/book", h.Book)
	r.POST("/purchase-invoices/:id/pay", h.Pay)
	return r, userID
}

func TestPurchaseInvoiceHandler_Book_WithSupplierDate(t *testing.T) {
	purchases := new(mocks.MockPurchaseInvoiceService)
	r, userID := setupPurchaseRouter(purchases)
	id := uuid.New()
	issued := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)
	number := "FP-2025-0041"

	purchases.On("Book", mock.Anything, testTenant, &userID, id, mock.MatchedBy(func(in service.EmitInput) bool {
		return in.IssueDate != nil && in.IssueDate.Equal(issued)
	})).Return(&domain.PurchaseInvoice{ID: id, Status: domain.PurchaseStatusBooked, Numbering: domain.Numbering{Number: &number}}, nil)

	w := doJSON(r, http.MethodPost, "/purchase-invoices/"+id.String()+"/book", map[string]string{"issue_date": "2025-12-30T00:00:00Z"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"number":"FP-2025-0041"`)
	purchases.AssertExpectations(t)
}

func TestPurchaseInvoiceHandler_Pay_NotBooked(t *testing.T) {
	purchases := new(mocks.MockPurchaseInvoiceService)
	r, _ := setupPurchaseRouter(purchases)
	id := uuid.New()

	purchases.On("MarkPaid", mock.Anything, testTenant, mock.Anything, id).
		Return(nil, &domain.TransitionError{Entity: domain.EntityPurchaseInvoice, From: "DRAFT", Action: domain.ActionPay})

	w := doJSON(r, http.MethodPost, "/purchase-invoices/"+id.String()+"/pay", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, w).Error.Code)
}

func TestPurchaseInvoiceHandler_List_ClampsLimit(t *testing.T) {
	purchases := new(mocks.MockPurchaseInvoiceService)
	r, _ := setupPurchaseRouter(purchases)
	want := port.ListFilter{Status: "BOOKED", Offset: 40, Limit: 20}

	purchases.On("List", mock.Anything, testTenant, want).
		Return([]domain.PurchaseInvoice{{ID: uuid.New()}}, 41, nil)

	w := doJSON(r, http.MethodGet, "/purchase-invoices?status=BOOKED&offset=40&limit=500", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 41, env.Meta.Total)
	assert.Equal(t, 20, env.Meta.Limit)
	purchases.AssertExpectations(t)
}
