package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/service"
)

// TaxRateHandler handles tax rate endpoints.
type TaxRateHandler struct {
	errorResponder
	rates service.TaxRateService
}

// NewTaxRateHandler creates a new TaxRateHandler.
func NewTaxRateHandler(rates service.TaxRateService, log *zap.Logger) *TaxRateHandler {
	return &TaxRateHandler{errorResponder: errorResponder{log: log}, rates: rates}
}

// Create handles POST /api/v1/tax-rates
// @Summary Create a tax rate
// @Tags tax-rates
// @Accept json
// @Produce json
// @Param request body service.CreateTaxRateInput true "Tax rate"
// @Success 201 {object} Response{data=domain.TaxRate} "Tax rate created"
// @Failure 400 {object} ErrorResponseBody "Validation error or duplicate name"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /tax-rates [post]
func (h *TaxRateHandler) Create(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.CreateTaxRateInput
	if !h.bindJSON(c, &input) {
		return
	}

	rate, err := h.rates.Create(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, rate)
}

// List handles GET /api/v1/tax-rates
// @Summary List tax rates
// @Tags tax-rates
// @Produce json
// @Success 200 {object} Response{data=[]domain.TaxRate} "Tax rates"
// @Security BearerAuth
// @Router /tax-rates [get]
func (h *TaxRateHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	rates, err := h.rates.List(c.Request.Context(), tenant)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, rates)
}

// GetByID handles GET /api/v1/tax-rates/:id
// @Summary Get tax rate by ID
// @Tags tax-rates
// @Produce json
// @Param id path string true "Tax rate ID (UUID)"
// @Success 200 {object} Response{data=domain.TaxRate} "Tax rate"
// @Failure 404 {object} ErrorResponseBody "Tax rate not found"
// @Security BearerAuth
// @Router /tax-rates/{id} [get]
func (h *TaxRateHandler) GetByID(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "tax rate")
	if !ok {
		return
	}
	rate, err := h.rates.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, rate)
}
