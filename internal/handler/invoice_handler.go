package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/service"
)

// InvoiceHandler handles invoice and credit note endpoints.
type InvoiceHandler struct {
	errorResponder
	invoices service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices service.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{errorResponder: errorResponder{log: log}, invoices: invoices}
}

// Create handles POST /api/v1/invoices
// @Summary Create a draft invoice or credit note
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body service.CreateInvoiceInput true "Invoice details"
// @Success 201 {object} Response{data=domain.Invoice} "Draft created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.CreateInvoiceInput
	if !h.bindJSON(c, &input) {
		return
	}

	inv, err := h.invoices.Create(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param status query string false "Filter by status"
// @Param kind query string false "INVOICE or CREDIT_NOTE"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice,meta=PagMeta} "Invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	filter := listFilter(c)

	invoices, total, err := h.invoices.List(c.Request.Context(), tenant, filter)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get invoice by ID
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	inv, err := h.invoices.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Replace a draft invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param request body service.UpdateInvoiceInput true "Invoice details"
// @Success 200 {object} Response{data=domain.Invoice} "Draft updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Invoice is not a draft"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}
	var input service.UpdateInvoiceInput
	if !h.bindJSON(c, &input) {
		return
	}

	inv, err := h.invoices.UpdateDraft(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete a draft invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Deleted"
// @Failure 409 {object} ErrorResponseBody "Invoice is not a draft"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), tenant, actorID, id); err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "invoice deleted"})
}

// Emit handles POST /api/v1/invoices/:id/emit
// @Summary Emit a draft invoice
// @Description Assigns the next gapless number and moves the invoice to ISSUED in one transaction.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param request body service.EmitInput false "Optional issue date"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice issued"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 409 {object} ErrorResponseBody "Invoice is not a draft"
// @Security BearerAuth
// @Router /invoices/{id}/emit [post]
func (h *InvoiceHandler) Emit(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}
	var input service.EmitInput
	if !h.bindOptionalJSON(c, &input) {
		return
	}

	inv, err := h.invoices.Emit(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, inv)
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
// @Summary Record a payment
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param request body service.RecordPaymentInput true "Payment"
// @Success 200 {object} Response{data=domain.Invoice} "Payment recorded"
// @Failure 400 {object} ErrorResponseBody "Amount exceeds outstanding balance"
// @Failure 409 {object} ErrorResponseBody "Invoice cannot receive payments"
// @Security BearerAuth
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}
	var input service.RecordPaymentInput
	if !h.bindJSON(c, &input) {
		return
	}

	inv, err := h.invoices.RecordPayment(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, inv)
}

// ListPayments handles GET /api/v1/invoices/:id/payments
// @Summary List payments of an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=[]domain.InvoicePayment} "Payments"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/payments [get]
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	payments, err := h.invoices.ListPayments(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, payments)
}

// Send handles POST /api/v1/invoices/:id/send
// @Summary Email an issued invoice to its client
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Sent"
// @Failure 400 {object} ErrorResponseBody "Client has no email"
// @Failure 409 {object} ErrorResponseBody "Invoice is not issued"
// @Failure 502 {object} ErrorResponseBody "Renderer or mailer failed"
// @Security BearerAuth
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	if err := h.invoices.Send(c.Request.Context(), tenant, actorID, id); err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "invoice sent"})
}

// PDF handles GET /api/v1/invoices/:id/pdf
// @Summary Render an invoice as PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {file} binary "PDF document"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 502 {object} ErrorResponseBody "Renderer failed"
// @Security BearerAuth
// @Router /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	pdf, filename, err := h.invoices.RenderPDF(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	respondPDF(c, filename, pdf)
}

// ArchivedPDFURL handles GET /api/v1/invoices/:id/pdf-url
// @Summary Get a presigned download URL of the archived PDF
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=PDFURLResponse} "Presigned URL"
// @Failure 400 {object} ErrorResponseBody "Archiving not configured"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/pdf-url [get]
func (h *InvoiceHandler) ArchivedPDFURL(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	url, err := h.invoices.ArchivedPDFURL(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, PDFURLResponse{URL: url})
}
