package api

import (
	"net/http"

	"BetX/internal/middleware"
	"BetX/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ClientHandler 代理客户管理
type ClientHandler struct {
	clientService *service.ClientService
	logger        *logrus.Logger
}

func NewClientHandler(clientSvc *service.ClientService, logger *logrus.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientSvc, logger: logger}
}

// List GET /api/agent/clients
func (h *ClientHandler) List(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	clients, err := h.clientService.List(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": clients})
}

// Create POST /api/agent/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	client, err := h.clientService.Create(c.Request.Context(), principal, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Client created successfully", "data": client})
}

// Update PUT /api/agent/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	if err := h.clientService.Update(c.Request.Context(), principal, c.Param("id"), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Client updated successfully"})
}

// Delete DELETE /api/agent/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	if err := h.clientService.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Client deleted successfully"})
}
