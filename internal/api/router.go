package api

import (
	"net/http"
	"time"

	"BetX/internal/interfaces"
	"BetX/internal/metrics"
	"BetX/internal/middleware"
	"BetX/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps 路由依赖，由 main 组装
type Deps struct {
	Guard      *service.GuardService
	Import     *service.ImportService
	Market     *service.MarketService
	Settlement *service.SettlementService
	OddsSync   *service.OddsSyncService
	Clients    *service.ClientService
	SubAdmins  *service.SubAdminService
	Profiles   *service.ProfileService
	MatchFeed  interfaces.MatchFeed
	Metrics    *metrics.Metrics

	AuthWindow time.Duration
	AuthBurst  int
	Logger     *logrus.Logger
}

// Register 注册全部路由
func Register(r *gin.Engine, d Deps) {
	writeErr := errorWriter(d.Logger)
	authenticate := middleware.Authenticate(d.Guard, writeErr)

	r.Use(middleware.Metrics(d.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "BetX API is running"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	authHandler := NewAuthHandler(d.Profiles, d.Logger)

	// 代理；登录校验先限流再验 token
	agentGuard := []gin.HandlerFunc{authenticate, middleware.RequireRoles(d.Guard, service.AgentRoles, writeErr)}
	limiter := middleware.NewIPRateLimiter(d.AuthWindow, d.AuthBurst)
	r.POST("/api/agent/auth/verify", append([]gin.HandlerFunc{limiter.Middleware()}, append(agentGuard, authHandler.Verify)...)...)

	agent := r.Group("/api/agent", agentGuard...)
	{
		agent.GET("/profile", authHandler.Profile)

		clientHandler := NewClientHandler(d.Clients, d.Logger)
		agent.GET("/clients", clientHandler.List)
		agent.POST("/clients", clientHandler.Create)
		agent.PUT("/clients/:id", clientHandler.Update)
		agent.DELETE("/clients/:id", clientHandler.Delete)
	}

	// 后台：admin / subadmin
	admin := r.Group("/api/admin", authenticate, middleware.RequireRoles(d.Guard, service.AdminRoles, writeErr))
	{
		admin.POST("/auth/verify", authHandler.Verify)

		cricket := NewCricketHandler(d.Import, d.Market, d.Settlement, d.OddsSync, d.MatchFeed, d.Logger)
		admin.GET("/cricket/current-matches", cricket.CurrentMatches)
		admin.GET("/cricket/matches", cricket.ListMatches)
		admin.GET("/cricket/matches/:matchId", cricket.GetMatch)
		admin.POST("/cricket/import", cricket.ImportMatch)
		admin.POST("/cricket/manual-create", cricket.CreateManualMatch)
		admin.POST("/cricket/market/add", cricket.AddMarket)
		admin.POST("/cricket/market/status", cricket.SetMarketStatus)
		admin.POST("/cricket/market/settle", cricket.SettleMarket)
		admin.POST("/cricket/selection/add", cricket.AddSelection)
		admin.POST("/cricket/selection/update-odd", cricket.UpdateOdd)
		admin.POST("/cricket/odds/sync", cricket.SyncOdds)

		// 超级管理员
		super := admin.Group("/subadmins", middleware.RequireSuperAdmin(d.Guard, writeErr))
		subAdminHandler := NewSubAdminHandler(d.SubAdmins, d.Logger)
		super.GET("", subAdminHandler.List)
		super.POST("", subAdminHandler.Create)
	}
}
