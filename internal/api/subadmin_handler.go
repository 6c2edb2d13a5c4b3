package api

import (
	"net/http"

	"BetX/internal/middleware"
	"BetX/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SubAdminHandler 子管理员管理（仅超级管理员）
type SubAdminHandler struct {
	subAdminService *service.SubAdminService
	logger          *logrus.Logger
}

func NewSubAdminHandler(svc *service.SubAdminService, logger *logrus.Logger) *SubAdminHandler {
	return &SubAdminHandler{subAdminService: svc, logger: logger}
}

type createSubAdminRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// Create POST /api/admin/subadmins
func (h *SubAdminHandler) Create(c *gin.Context) {
	var req createSubAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Email and name are required")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	created, err := h.subAdminService.Create(c.Request.Context(), principal, req.Email, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Sub-admin created successfully", "data": created})
}

// List GET /api/admin/subadmins
func (h *SubAdminHandler) List(c *gin.Context) {
	users, err := h.subAdminService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
}
