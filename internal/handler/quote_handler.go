package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/service"
)

// QuoteHandler handles quote endpoints.
type QuoteHandler struct {
	errorResponder
	quotes service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes service.QuoteService, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{errorResponder: errorResponder{log: log}, quotes: quotes}
}

// Create handles POST /api/v1/quotes
// @Summary Create a draft quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body service.QuoteInput true "Quote details"
// @Success 201 {object} Response{data=domain.Quote} "Draft created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.QuoteInput
	if !h.bindJSON(c, &input) {
		return
	}

	q, err := h.quotes.Create(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, q)
}

// List handles GET /api/v1/quotes
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param status query string false "Filter by status"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Quote,meta=PagMeta} "Quotes"
// @Security BearerAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	filter := listFilter(c)

	quotes, total, err := h.quotes.List(c.Request.Context(), tenant, filter)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, quotes, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

// GetByID handles GET /api/v1/quotes/:id
// @Summary Get quote by ID
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID (UUID)"
// @Success 200 {object} Response{data=domain.Quote} "Quote"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	q, err := h.quotes.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, q)
}

// Update handles PUT /api/v1/quotes/:id
// @Summary Replace a draft quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID (UUID)"
// @Param request body service.QuoteInput true "Quote details"
// @Success 200 {object} Response{data=domain.Quote} "Draft updated"
// @Failure 409 {object} ErrorResponseBody "Quote is not a draft"
// @Security BearerAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}
	var input service.QuoteInput
	if !h.bindJSON(c, &input) {
		return
	}

	q, err := h.quotes.UpdateDraft(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, q)
}

// Delete handles DELETE /api/v1/quotes/:id
// @Summary Delete a draft quote
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Deleted"
// @Failure 409 {object} ErrorResponseBody "Quote is not a draft"
// @Security BearerAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	if err := h.quotes.Delete(c.Request.Context(), tenant, actorID, id); err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "quote deleted"})
}

// Emit handles POST /api/v1/quotes/:id/emit
// @Summary Emit a draft quote
// @Description Assigns the next quote number and moves the quote to SENT.
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID (UUID)"
// @Param request body service.EmitInput false "Optional issue date"
// @Success 200 {object} Response{data=domain.Quote} "Quote sent"
// @Failure 409 {object} ErrorResponseBody "Quote is not a draft"
// @Security BearerAuth
// @Router /quotes/{id}/emit [post]
func (h *QuoteHandler) Emit(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}
	var input service.EmitInput
	if !h.bindOptionalJSON(c, &input) {
		return
	}

	q, err := h.quotes.Emit(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, q)
}

// Accept handles POST /api/v1/quotes/:id/accept
// @Summary Mark a sent quote as accepted
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID (UUID)"
// @Success 200 {object} Response{data=domain.Quote} "Quote accepted"
// @Failure 409 {object} ErrorResponseBody "Quote is not sent"
// @Security BearerAuth
// @Router /quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(c *gin.Context) {
	h.reply(c, h.quotes.Accept)
}

// Reject handles POST /api/v1/quotes/:id/reject
// @Summary Mark a sent quote as rejected
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID (UUID)"
// @Success 200 {object} Response{data=domain.Quote} "Quote rejected"
// @Failure 409 {object} ErrorResponseBody "Quote is not sent"
// @Security BearerAuth
// @Router /quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(c *gin.Context) {
	h.reply(c, h.quotes.Reject)
}

type quoteReply func(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.Quote, error)

func (h *QuoteHandler) reply(c *gin.Context, fn quoteReply) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	q, err := fn(c.Request.Context(), tenant, actorID, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, q)
}

// Convert handles POST /api/v1/quotes/:id/convert
// @Summary Convert an accepted quote into a draft invoice
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID (UUID)"
// @Success 201 {object} Response{data=domain.Invoice} "Draft invoice created"
// @Failure 409 {object} ErrorResponseBody "Quote not accepted or already converted"
// @Security BearerAuth
// @Router /quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	inv, err := h.quotes.Convert(c.Request.Context(), tenant, actorID, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, inv)
}

// PDF handles GET /api/v1/quotes/:id/pdf
// @Summary Render a quote as PDF
// @Tags quotes
// @Produce application/pdf
// @Param id path string true "Quote ID (UUID)"
// @Success 200 {file} binary "PDF document"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Security BearerAuth
// @Router /quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	pdf, filename, err := h.quotes.RenderPDF(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	respondPDF(c, filename, pdf)
}
