package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facturo/internal/service"
)

// ClientHandler handles client endpoints.
type ClientHandler struct {
	errorResponder
	clients service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clients service.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{errorResponder: errorResponder{log: log}, clients: clients}
}

// Create handles POST /api/v1/clients
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Param request body service.CounterpartyInput true "Client details"
// @Success 201 {object} Response{data=domain.Client} "Client created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.CounterpartyInput
	if !h.bindJSON(c, &input) {
		return
	}

	client, err := h.clients.Create(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, client)
}

// List handles GET /api/v1/clients
// @Summary List clients
// @Tags clients
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Client,meta=PagMeta} "List of clients"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	clients, total, err := h.clients.List(c.Request.Context(), tenant, offset, limit)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, clients, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/clients/:id
// @Summary Get client by ID
// @Tags clients
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Success 200 {object} Response{data=domain.Client} "Client details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "client")
	if !ok {
		return
	}

	client, err := h.clients.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, client)
}

// Update handles PUT /api/v1/clients/:id
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Param request body service.CounterpartyInput true "Client details"
// @Success 200 {object} Response{data=domain.Client} "Client updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "client")
	if !ok {
		return
	}
	var input service.CounterpartyInput
	if !h.bindJSON(c, &input) {
		return
	}

	client, err := h.clients.Update(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, client)
}

// ProviderHandler handles provider endpoints.
type ProviderHandler struct {
	errorResponder
	providers service.ProviderService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(providers service.ProviderService, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{errorResponder: errorResponder{log: log}, providers: providers}
}

// Create handles POST /api/v1/providers
// @Summary Create a provider
// @Tags providers
// @Accept json
// @Produce json
// @Param request body service.CounterpartyInput true "Provider details"
// @Success 201 {object} Response{data=domain.Provider} "Provider created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /providers [post]
func (h *ProviderHandler) Create(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	var input service.CounterpartyInput
	if !h.bindJSON(c, &input) {
		return
	}

	provider, err := h.providers.Create(c.Request.Context(), tenant, actorID, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondCreated(c, provider)
}

// List handles GET /api/v1/providers
// @Summary List providers
// @Tags providers
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Provider,meta=PagMeta} "List of providers"
// @Security BearerAuth
// @Router /providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	providers, total, err := h.providers.List(c.Request.Context(), tenant, offset, limit)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondPaginated(c, providers, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/providers/:id
// @Summary Get provider by ID
// @Tags providers
// @Produce json
// @Param id path string true "Provider ID (UUID)"
// @Success 200 {object} Response{data=domain.Provider} "Provider details"
// @Failure 404 {object} ErrorResponseBody "Provider not found"
// @Security BearerAuth
// @Router /providers/{id} [get]
func (h *ProviderHandler) GetByID(c *gin.Context) {
	tenant, _, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "provider")
	if !ok {
		return
	}

	provider, err := h.providers.GetByID(c.Request.Context(), tenant, id)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, provider)
}

// Update handles PUT /api/v1/providers/:id
// @Summary Update a provider
// @Tags providers
// @Accept json
// @Produce json
// @Param id path string true "Provider ID (UUID)"
// @Param request body service.CounterpartyInput true "Provider details"
// @Success 200 {object} Response{data=domain.Provider} "Provider updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Provider not found"
// @Security BearerAuth
// @Router /providers/{id} [put]
func (h *ProviderHandler) Update(c *gin.Context) {
	tenant, actorID, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "provider")
	if !ok {
		return
	}
	var input service.CounterpartyInput
	if !h.bindJSON(c, &input) {
		return
	}

	provider, err := h.providers.Update(c.Request.Context(), tenant, actorID, id, input)
	if err != nil {
		h.handle(c, err)
		return
	}
	RespondOK(c, provider)
}
