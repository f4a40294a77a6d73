package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/service"
)

// SequenceHandler handles administrative numbering endpoints.
type SequenceHandler struct {
	errorResponder
	sequences service.SequenceService
}

// NewSequenceHandler creates a new SequenceHandler.
func NewSequenceHandler(sequences service.SequenceService, log *zap.Logger) *SequenceHandler {
	return &SequenceHandler{errorResponder: errorResponder{log: log}, sequences: sequences}
}

// Reset handles POST /api/v1/admin/sequences/reset
// @Summary Reset a numbering counter
// @Description Sets the counter for (year, doc_type). Lowering it can produce duplicate numbers; the response carries a warning.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body service.ResetSequenceInput true "Counter and new value"
// @Success 200 {object} Response{data=service.ResetResult} "Counter reset"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /admin/sequences/reset [post]
func (h *SequenceHandler) Reset(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.ResetSequenceInput
	if !h.bindJSON(c, &input) {
		return
	}

	res, err := h.sequences.Reset(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, res)
}

// List handles GET /api/v1/admin/sequences
// @Summary List numbering counters of a year
// @Tags admin
// @Produce json
// @Param year query int false "Year (defaults to the current year)"
// @Success 200 {object} Response{data=[]domain.SequenceCounter} "Counters"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /admin/sequences [get]
func (h *SequenceHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	year := time.Now().UTC().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "year: must be a number")
			return
		}
		year = parsed
	}

	counters, err := h.sequences.List(c.Request.Context(), tenant, year)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, counters)
}
