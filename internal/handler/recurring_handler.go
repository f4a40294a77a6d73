package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/middleware"
	"facturo/internal/service"
)

// RecurringHandler handles recurring template endpoints and the cron trigger.
type RecurringHandler struct {
	errorResponder
	recurring service.RecurringService
	quotes    service.QuoteService
	now       func() time.Time
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurring service.RecurringService, quotes service.QuoteService, log *zap.Logger) *RecurringHandler {
	return &RecurringHandler{
		errorResponder: errorResponder{log: log},
		recurring:      recurring,
		quotes:         quotes,
		now:            time.Now,
	}
}

// Create handles POST /api/v1/recurring-templates
// @Summary Create a recurring template
// @Tags recurring
// @Accept json
// @Produce json
// @Param request body service.RecurringTemplateInput true "Template"
// @Success 201 {object} Response{data=domain.RecurringTemplate} "Template created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /recurring-templates [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.RecurringTemplateInput
	if !h.bindJSON(c, &input) {
		return
	}

	tpl, err := h.recurring.Create(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, tpl)
}

// List handles GET /api/v1/recurring-templates
// @Summary List recurring templates
// @Tags recurring
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.RecurringTemplate,meta=PagMeta} "Templates"
// @Security BearerAuth
// @Router /recurring-templates [get]
func (h *RecurringHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	templates, total, err := h.recurring.List(c.Request.Context(), tenant, offset, limit)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, templates, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/recurring-templates/:id
// @Summary Get recurring template by ID
// @Tags recurring
// @Produce json
// @Param id path string true "Template ID (UUID)"
// @Success 200 {object} Response{data=domain.RecurringTemplate} "Template"
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Security BearerAuth
// @Router /recurring-templates/{id} [get]
func (h *RecurringHandler) GetByID(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	tpl, err := h.recurring.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, tpl)
}

// Update handles PUT /api/v1/recurring-templates/:id
// @Summary Replace a recurring template
// @Tags recurring
// @Accept json
// @Produce json
// @Param id path string true "Template ID (UUID)"
// @Param request body service.RecurringTemplateInput true "Template"
// @Success 200 {object} Response{data=domain.RecurringTemplate} "Template updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Security BearerAuth
// @Router /recurring-templates/{id} [put]
func (h *RecurringHandler) Update(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "template")
	if !ok {
		return
	}
	var input service.RecurringTemplateInput
	if !h.bindJSON(c, &input) {
		return
	}

	tpl, err := h.recurring.Update(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, tpl)
}

// Pause handles POST /api/v1/recurring-templates/:id/pause
// @Summary Pause a recurring template
// @Tags recurring
// @Produce json
// @Param id path string true "Template ID (UUID)"
// @Success 200 {object} Response{data=domain.RecurringTemplate} "Paused"
// @Failure 409 {object} ErrorResponseBody "Template is not active"
// @Security BearerAuth
// @Router /recurring-templates/{id}/pause [post]
func (h *RecurringHandler) Pause(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	tpl, err := h.recurring.Pause(c.Request.Context(), tenant, actorID, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, tpl)
}

// Resume handles POST /api/v1/recurring-templates/:id/resume
// @Summary Resume a paused recurring template
// @Tags recurring
// @Produce json
// @Param id path string true "Template ID (UUID)"
// @Success 200 {object} Response{data=domain.RecurringTemplate} "Resumed"
// @Failure 409 {object} ErrorResponseBody "Template is not paused"
// @Security BearerAuth
// @Router /recurring-templates/{id}/resume [post]
func (h *RecurringHandler) Resume(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	tpl, err := h.recurring.Resume(c.Request.Context(), tenant, actorID, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, tpl)
}

// ListRuns handles GET /api/v1/recurring-templates/:id/runs
// @Summary List the run history of a template
// @Tags recurring
// @Produce json
// @Param id path string true "Template ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.RecurringRun,meta=PagMeta} "Runs"
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Security BearerAuth
// @Router /recurring-templates/{id}/runs [get]
func (h *RecurringHandler) ListRuns(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "template")
	if !ok {
		return
	}
	offset, limit := pagination(c)

	runs, total, err := h.recurring.ListRuns(c.Request.Context(), tenant, id, offset, limit)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// RunNow handles POST /api/v1/recurring-templates/:id/run
// @Summary Run a template now
// @Description Generates the invoice immediately. Delivery failures are reported in error_message with status 200.
// @Tags recurring
// @Produce json
// @Param id path string true "Template ID (UUID)"
// @Success 200 {object} Response{data=service.TemplateRunResult} "Run result"
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Failure 409 {object} ErrorResponseBody "Template is paused"
// @Security BearerAuth
// @Router /recurring-templates/{id}/run [post]
func (h *RecurringHandler) RunNow(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	res, err := h.recurring.RunNow(c.Request.Context(), tenant, actorID, id, h.now())
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, res)
}

// Tick handles POST /api/v1/cron/recurring
// @Summary Run the recurring scheduler
// @Description Processes every due template and expires overdue quotes. Authenticated by the X-Cron-Secret header.
// @Tags cron
// @Produce json
// @Param X-Cron-Secret header string true "Shared cron secret"
// @Success 200 {object} Response{data=CronTickResponse} "Tick result"
// @Failure 401 {object} ErrorResponseBody "Invalid secret"
// @Router /cron/recurring [post]
func (h *RecurringHandler) Tick(c *gin.Context) {
	tenant, err := middleware.GetTenant(c)
	if err != nil {
		h.handle(c, err)
		return
	}
	now := h.now()

	result, err := h.recurring.RunTick(c.Request.Context(), tenant, now)
	if err != nil {
		h.handle(c, err)
		return
	}
	expired, err := h.quotes.ExpireOverdue(c.Request.Context(), tenant, now)
	if err != nil {
		h.log.Warn("quote expiry failed during cron tick", zap.Error(err))
	}
	RespondOK(c, CronTickResponse{TickResult: *result, ExpiredQuotes: expired})
}
