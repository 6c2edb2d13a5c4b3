package api

import (
	"net/http"
	"strconv"

	"BetX/internal/apperr"
	"BetX/internal/interfaces"
	"BetX/internal/middleware"
	"BetX/internal/model"
	"BetX/internal/repository"
	"BetX/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CricketHandler 后台赛事、盘口、赔率与结算接口
type CricketHandler struct {
	importService     *service.ImportService
	marketService     *service.MarketService
	settlementService *service.SettlementService
	oddsSyncService   *service.OddsSyncService
	matchFeed         interfaces.MatchFeed
	logger            *logrus.Logger
}

// NewCricketHandler matchFeed 可为 nil，此时 current-matches 返回 503
func NewCricketHandler(importSvc *service.ImportService, marketSvc *service.MarketService, settleSvc *service.SettlementService, oddsSyncSvc *service.OddsSyncService, matchFeed interfaces.MatchFeed, logger *logrus.Logger) *CricketHandler {
	return &CricketHandler{
		importService:     importSvc,
		marketService:     marketSvc,
		settlementService: settleSvc,
		oddsSyncService:   oddsSyncSvc,
		matchFeed:         matchFeed,
		logger:            logger,
	}
}

type importRequest struct {
	Match *model.MatchCandidate `json:"match" binding:"required"`
}

type addMarketRequest struct {
	MatchID string `json:"matchId" binding:"required"`
	Type    string `json:"type" binding:"required"`
}

type addSelectionRequest struct {
	MatchID    string   `json:"matchId" binding:"required"`
	MarketID   string   `json:"marketId" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	InitialOdd *float64 `json:"initialOdd" binding:"required"`
}

type settleRequest struct {
	MatchID           string `json:"matchId" binding:"required"`
	MarketID          string `json:"marketId" binding:"required"`
	WinnerSelectionID string `json:"winnerSelectionId" binding:"required"`
}

type updateOddRequest struct {
	MatchID     string   `json:"matchId" binding:"required"`
	MarketID    string   `json:"marketId" binding:"required"`
	SelectionID string   `json:"selectionId" binding:"required"`
	NewOdd      *float64 `json:"newOdd" binding:"required"`
}

type marketStatusRequest struct {
	MatchID  string `json:"matchId" binding:"required"`
	MarketID string `json:"marketId" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// ImportMatch 导入外部赛事
// POST /api/admin/cricket/import
func (h *CricketHandler) ImportMatch(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Match data is required")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	result, err := h.importService.ImportMatch(c.Request.Context(), principal, req.Match)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	message := "Match imported successfully"
	if result.AlreadyExisted {
		message = "Match already imported"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        message,
		"matchId":        result.MatchID,
		"alreadyExisted": result.AlreadyExisted,
	})
}

// CreateManualMatch 手工创建赛事
// POST /api/admin/cricket/manual-create
func (h *CricketHandler) CreateManualMatch(c *gin.Context) {
	var req service.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Missing required fields")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	matchID, err := h.importService.CreateManualMatch(c.Request.Context(), principal, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Manual match created", "matchId": matchID})
}

// AddMarket 新增盘口
// POST /api/admin/cricket/market/add
func (h *CricketHandler) AddMarket(c *gin.Context) {
	var req addMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "matchId and type are required")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	marketID, err := h.marketService.AddMarket(c.Request.Context(), principal, req.MatchID, req.Type)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Market added", "marketId": marketID})
}

// AddSelection 新增手工选项
// POST /api/admin/cricket/selection/add
func (h *CricketHandler) AddSelection(c *gin.Context) {
	var req addSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "matchId, marketId, name and initialOdd are required")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	selectionID, err := h.marketService.AddSelection(c.Request.Context(), principal, req.MatchID, req.MarketID, req.Name, *req.InitialOdd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Selection added", "selectionId": selectionID})
}

// SettleMarket 结算盘口
// POST /api/admin/cricket/market/settle
func (h *CricketHandler) SettleMarket(c *gin.Context) {
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "matchId, marketId and winnerSelectionId are required")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	if err := h.settlementService.SettleMarket(c.Request.Context(), principal, req.MatchID, req.MarketID, req.WinnerSelectionID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Market settled"})
}

// UpdateOdd 修改选项赔率
// POST /api/admin/cricket/selection/update-odd
func (h *CricketHandler) UpdateOdd(c *gin.Context) {
	var req updateOddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "matchId, marketId, selectionId and newOdd are required")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	if err := h.marketService.UpdateOdd(c.Request.Context(), principal, req.MatchID, req.MarketID, req.SelectionID, *req.NewOdd); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Odd updated"})
}

// SetMarketStatus 暂停 / 恢复盘口
// POST /api/admin/cricket/market/status
func (h *CricketHandler) SetMarketStatus(c *gin.Context) {
	var req marketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "matchId, marketId and status are required")
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	if err := h.marketService.SetMarketStatus(c.Request.Context(), principal, req.MatchID, req.MarketID, req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Market status updated"})
}

// SyncOdds 从赔率源刷新已导入赛事的赔率
// POST /api/admin/cricket/odds/sync?limit=500
func (h *CricketHandler) SyncOdds(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))
	result, err := h.oddsSyncService.Run(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// CurrentMatches 外部赛事源中的当前赛事，供导入挑选
// GET /api/admin/cricket/current-matches
func (h *CricketHandler) CurrentMatches(c *gin.Context) {
	if h.matchFeed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Match feed is not configured"})
		return
	}
	matches, err := h.matchFeed.FetchCurrentMatches(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, apperr.Upstream("Failed to fetch current matches", err))
		return
	}
	if matches == nil {
		matches = []model.MatchCandidate{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": matches})
}

// ListMatches 已导入赛事列表
// GET /api/admin/cricket/matches?status=upcoming&source=api&page=1&page_size=20
func (h *CricketHandler) ListMatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	filter := repository.MatchFilter{
		Status: c.Query("status"),
		Source: c.Query("source"),
	}

	result, err := h.marketService.ListMatches(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetMatch 赛事详情（含盘口与选项）
// GET /api/admin/cricket/matches/:matchId
func (h *CricketHandler) GetMatch(c *gin.Context) {
	detail, err := h.marketService.GetMatchDetail(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}
