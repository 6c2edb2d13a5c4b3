package api

import (
	"net/http"

	"BetX/internal/middleware"
	"BetX/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler 登录校验与账号资料
type AuthHandler struct {
	profileService *service.ProfileService
	logger         *logrus.Logger
}

func NewAuthHandler(profileSvc *service.ProfileService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{profileService: profileSvc, logger: logger}
}

// Verify 返回通过校验的请求主体
// POST /api/agent/auth/verify, POST /api/admin/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": principal})
}

// Profile 代理资料，并刷新最后登录时间
// GET /api/agent/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	profile, err := h.profileService.GetProfile(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}
