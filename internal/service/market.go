package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/interfaces"
	"BetX/internal/metrics"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MarketService 盘口/选项管理与看板查询
type MarketService struct {
	repo      repository.MatchRepository
	publisher interfaces.ChangePublisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	now       func() time.Time
}

// NewMarketService 创建 MarketService
func NewMarketService(repo repository.MatchRepository, publisher interfaces.ChangePublisher, m *metrics.Metrics, logger *logrus.Logger) *MarketService {
	return &MarketService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// AddMarket 为赛事新增盘口。match_winner / toss 自动生成两队默认选项，其余类型无初始选项
func (s *MarketService) AddMarket(ctx context.Context, actor model.Principal, matchID, marketType string) (string, error) {
	marketType = strings.TrimSpace(marketType)
	if matchID == "" || marketType == "" {
		return "", apperr.Validation("matchId and type are required")
	}
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	market := &model.Market{
		MatchID:   matchID,
		ID:        fmt.Sprintf("%s_%d_%s", marketType, now.UnixMilli(), uuid.NewString()[:8]),
		Type:      marketType,
		Status:    model.MarketStatusOpen,
		CreatedBy: actor.UID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var selections []*model.Selection
	if marketType == model.MarketTypeMatchWinner || marketType == model.MarketTypeToss {
		selections = defaultSelections(matchID, market.ID, match.TeamA, match.TeamB, now)
	}

	if err := s.repo.CreateMarket(ctx, market, selections); err != nil {
		return "", fmt.Errorf("新增盘口失败: %w", err)
	}

	s.metrics.RecordMarketCreated(marketType)
	s.logger.WithFields(logrus.Fields{
		"match_id":  matchID,
		"market_id": market.ID,
		"actor":     actor.UID,
	}).Info("盘口已创建")
	publishChange(ctx, s.publisher, s.logger, model.Change{Type: model.ChangeMarketAdded, MatchID: matchID, MarketID: market.ID, At: now})
	return market.ID, nil
}

// AddSelection 为未关闭的盘口新增手工选项
func (s *MarketService) AddSelection(ctx context.Context, actor model.Principal, matchID, marketID, name string, initialOdd float64) (string, error) {
	name = strings.TrimSpace(name)
	if matchID == "" || marketID == "" || name == "" {
		return "", apperr.Validation("matchId, marketId and name are required")
	}
	odd, err := model.NewPrice(initialOdd)
	if err != nil {
		return "", err
	}
	if err := s.ensureMarketOpen(ctx, matchID, marketID); err != nil {
		return "", err
	}

	now := s.now().UTC()
	selection := &model.Selection{
		MatchID:       matchID,
		MarketID:      marketID,
		ID:            fmt.Sprintf("manual_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Name:          name,
		Odd:           odd,
		Source:        model.SelectionSourceManual,
		Status:        model.SelectionStatusActive,
		LastUpdatedAt: now,
	}
	if err := s.repo.AddSelection(ctx, selection); err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"match_id":     matchID,
		"market_id":    marketID,
		"selection_id": selection.ID,
		"actor":        actor.UID,
	}).Info("选项已新增")
	publishChange(ctx, s.publisher, s.logger, model.Change{
		Type: model.ChangeSelectionAdded, MatchID: matchID, MarketID: marketID, SelectionID: selection.ID, At: now,
	})
	return selection.ID, nil
}

// UpdateOdd 覆盖选项赔率，盘口关闭后不可修改
func (s *MarketService) UpdateOdd(ctx context.Context, actor model.Principal, matchID, marketID, selectionID string, newOdd float64) error {
	if matchID == "" || marketID == "" || selectionID == "" {
		return apperr.Validation("matchId, marketId and selectionId are required")
	}
	odd, err := model.NewPrice(newOdd)
	if err != nil {
		return err
	}
	if err := s.ensureMarketOpen(ctx, matchID, marketID); err != nil {
		return err
	}

	now := s.now().UTC()
	if err := s.repo.UpdateSelectionOdd(ctx, matchID, marketID, selectionID, odd, now); err != nil {
		return err
	}

	s.metrics.RecordOddUpdate()
	s.logger.WithFields(logrus.Fields{
		"match_id":     matchID,
		"market_id":    marketID,
		"selection_id": selectionID,
		"odd":          odd.String(),
		"actor":        actor.UID,
	}).Debug("赔率已更新")
	publishChange(ctx, s.publisher, s.logger, model.Change{
		Type: model.ChangeSelectionUpdate, MatchID: matchID, MarketID: marketID, SelectionID: selectionID, At: now,
	})
	return nil
}

// SetMarketStatus 在 open / suspended 之间切换；关闭只能通过结算
func (s *MarketService) SetMarketStatus(ctx context.Context, actor model.Principal, matchID, marketID, status string) error {
	if status != model.MarketStatusOpen && status != model.MarketStatusSuspended {
		return apperr.Validation("Status must be open or suspended")
	}
	now := s.now().UTC()
	if err := s.repo.UpdateMarketStatus(ctx, matchID, marketID, status, now); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"match_id":  matchID,
		"market_id": marketID,
		"status":    status,
		"actor":     actor.UID,
	}).Info("盘口状态已更新")
	publishChange(ctx, s.publisher, s.logger, model.Change{Type: model.ChangeMarketStatus, MatchID: matchID, MarketID: marketID, At: now})
	return nil
}

func (s *MarketService) ensureMarketOpen(ctx context.Context, matchID, marketID string) error {
	market, err := s.repo.GetMarket(ctx, matchID, marketID)
	if err != nil {
		return err
	}
	if market.Status == model.MarketStatusClosed {
		return apperr.InvalidState("Market is closed")
	}
	return nil
}

// ===== 看板查询 =====

// MarketView 盘口及其选项
type MarketView struct {
	*model.Market
	Selections []*model.Selection `json:"selections"`
}

// MatchDetail 赛事详情
type MatchDetail struct {
	*model.Match
	Markets []MarketView `json:"markets"`
}

// MatchListResult 列表返回
type MatchListResult struct {
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int64          `json:"total"`
	Items    []*model.Match `json:"items"`
}

// ListMatches 分页返回已导入赛事
func (s *MarketService) ListMatches(ctx context.Context, filter repository.MatchFilter, page, pageSize int) (*MatchListResult, error) {
	matches, total, err := s.repo.ListMatches(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []*model.Match{}
	}
	return &MatchListResult{Page: page, PageSize: pageSize, Total: total, Items: matches}, nil
}

// GetMatchDetail 赛事 + 全部盘口 + 选项
func (s *MarketService) GetMatchDetail(ctx context.Context, matchID string) (*MatchDetail, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	markets, err := s.repo.ListMarkets(ctx, matchID)
	if err != nil {
		return nil, err
	}
	selections, err := s.repo.ListSelectionsByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	byMarket := make(map[string][]*model.Selection, len(markets))
	for _, sel := range selections {
		byMarket[sel.MarketID] = append(byMarket[sel.MarketID], sel)
	}

	detail := &MatchDetail{Match: match, Markets: make([]MarketView, 0, len(markets))}
	for _, m := range markets {
		sels := byMarket[m.ID]
		if sels == nil {
			sels = []*model.Selection{}
		}
		detail.Markets = append(detail.Markets, MarketView{Market: m, Selections: sels})
	}
	return detail, nil
}
