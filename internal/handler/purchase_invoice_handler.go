package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/service"
)

// PurchaseInvoiceHandler handles supplier invoice endpoints.
type PurchaseInvoiceHandler struct {
	errorResponder
	purchases service.PurchaseInvoiceService
}

// NewPurchaseInvoiceHandler creates a new PurchaseInvoiceHandler.
func NewPurchaseInvoiceHandler(purchases service.PurchaseInvoiceService, log *zap.Logger) *PurchaseInvoiceHandler {
	return &PurchaseInvoiceHandler{errorResponder: errorResponder{log: log}, purchases: purchases}
}

// Create handles POST /api/v1/purchase-invoices
// @Summary Record a draft purchase invoice
// @Tags purchase-invoices
// @Accept json
// @Produce json
// @Param request body service.PurchaseInvoiceInput true "Purchase invoice details"
// @Success 201 {object} Response{data=domain.PurchaseInvoice} "Draft created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /purchase-invoices [post]
func (h *PurchaseInvoiceHandler) Create(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.PurchaseInvoiceInput
	if !h.bindJSON(c, &input) {
		return
	}

	p, err := h.purchases.Create(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, p)
}

// List handles GET /api/v1/purchase-invoices
// @Summary List purchase invoices
// @Tags purchase-invoices
// @Produce json
// @Param status query string false "Filter by status"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.PurchaseInvoice,meta=PagMeta} "Purchase invoices"
// @Security BearerAuth
// @Router /purchase-invoices [get]
func (h *PurchaseInvoiceHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	filter := listFilter(c)

	items, total, err := h.purchases.List(c.Request.Context(), tenant, filter)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, items, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

// GetByID handles GET /api/v1/purchase-invoices/:id
// @Summary Get purchase invoice by ID
// @Tags purchase-invoices
// @Produce json
// @Param id path string true "Purchase invoice ID (UUID)"
// @Success 200 {object} Response{data=domain.PurchaseInvoice} "Purchase invoice"
// @Failure 404 {object} ErrorResponseBody "Purchase invoice not found"
// @Security BearerAuth
// @Router /purchase-invoices/{id} [get]
func (h *PurchaseInvoiceHandler) GetByID(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "purchase invoice")
	if !ok {
		return
	}

	p, err := h.purchases.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, p)
}

// Update handles PUT /api/v1/purchase-invoices/:id
// @Summary Replace a draft purchase invoice
// @Tags purchase-invoices
// @Accept json
// @Produce json
// @Param id path string true "Purchase invoice ID (UUID)"
// @Param request body service.PurchaseInvoiceInput true "Purchase invoice details"
// @Success 200 {object} Response{data=domain.PurchaseInvoice} "Draft updated"
// @Failure 409 {object} ErrorResponseBody "Purchase invoice is not a draft"
// @Security BearerAuth
// @Router /purchase-invoices/{id} [put]
func (h *PurchaseInvoiceHandler) Update(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "purchase invoice")
	if !ok {
		return
	}
	var input service.PurchaseInvoiceInput
	if !h.bindJSON(c, &input) {
		return
	}

	p, err := h.purchases.UpdateDraft(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, p)
}

// Delete handles DELETE /api/v1/purchase-invoices/:id
// @Summary Delete a draft purchase invoice
// @Tags purchase-invoices
// @Produce json
// @Param id path string true "Purchase invoice ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Deleted"
// @Failure 409 {object} ErrorResponseBody "Purchase invoice is not a draft"
// @Security BearerAuth
// @Router /purchase-invoices/{id} [delete]
func (h *PurchaseInvoiceHandler) Delete(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "purchase invoice")
	if !ok {
		return
	}

	if err := h.purchases.Delete(c.Request.Context(), tenant, actorID, id); err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "purchase invoice deleted"})
}

// Book handles POST /api/v1/purchase-invoices/:id/book
// @Summary Book a draft purchase invoice
// @Description Assigns the next purchase number and moves the document to BOOKED.
// @Tags purchase-invoices
// @Accept json
// @Produce json
// @Param id path string true "Purchase invoice ID (UUID)"
// @Param request body service.EmitInput false "Optional issue date"
// @Success 200 {object} Response{data=domain.PurchaseInvoice} "Booked"
// @Failure 409 {object} ErrorResponseBody "Purchase invoice is not a draft"
// @Security BearerAuth
// @Router /purchase-invoices/{id}/book [post]
func (h *PurchaseInvoiceHandler) Book(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "purchase invoice")
	if !ok {
		return
	}
	var input service.EmitInput
	if !h.bindOptionalJSON(c, &input) {
		return
	}

	p, err := h.purchases.Book(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, p)
}

// Pay handles POST /api/v1/purchase-invoices/:id/pay
// @Summary Mark a booked purchase invoice as paid
// @Tags purchase-invoices
// @Produce json
// @Param id path string true "Purchase invoice ID (UUID)"
// @Success 200 {object} Response{data=domain.PurchaseInvoice} "Paid"
// @Failure 409 {object} ErrorResponseBody "Purchase invoice is not booked"
// @Security BearerAuth
// @Router /purchase-invoices/{id}/pay [post]
func (h *PurchaseInvoiceHandler) Pay(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "purchase invoice")
	if !ok {
		return
	}

	p, err := h.purchases.MarkPaid(c.Request.Context(), tenant, actorID, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, p)
}
