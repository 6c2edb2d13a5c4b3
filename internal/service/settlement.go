package service

import (
	"context"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/interfaces"
	"BetX/internal/metrics"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/sirupsen/logrus"
)

// SettlementService 盘口结算：关闭盘口，标记赢家与输家
type SettlementService struct {
	repo      repository.MatchRepository
	publisher interfaces.ChangePublisher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	now       func() time.Time
}

func NewSettlementService(repo repository.MatchRepository, publisher interfaces.ChangePublisher, m *metrics.Metrics, logger *logrus.Logger) *SettlementService {
	return &SettlementService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// SettleMarket 结算盘口。不可重复结算，也不可撤销。
// winnerSelectionID 必须是该盘口下的选项；传 model.VoidSelectionID 表示作废，全部选项判负。
func (s *SettlementService) SettleMarket(ctx context.Context, actor model.Principal, matchID, marketID, winnerSelectionID string) error {
	if matchID == "" || marketID == "" || winnerSelectionID == "" {
		return apperr.Validation("matchId, marketId and winnerSelectionId are required")
	}

	market, err := s.repo.GetMarket(ctx, matchID, marketID)
	if err != nil {
		return err
	}
	if market.Status == model.MarketStatusClosed {
		return apperr.InvalidState("Market already settled")
	}

	outcome := "winner"
	if winnerSelectionID == model.VoidSelectionID {
		outcome = "void"
	} else if _, err := s.repo.GetSelection(ctx, matchID, marketID, winnerSelectionID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("Winner selection not found in market")
		}
		return err
	}

	now := s.now().UTC()
	if err := s.repo.SettleMarket(ctx, repository.SettleParams{
		MatchID:           matchID,
		MarketID:          marketID,
		WinnerSelectionID: winnerSelectionID,
		SettledBy:         actor.UID,
		At:                now,
	}); err != nil {
		if apperr.Is(err, apperr.KindInvalidState) {
			// 并发结算：另一请求先关闭了盘口
			return apperr.InvalidState("Market already settled")
		}
		return err
	}

	s.metrics.RecordSettlement(outcome)
	s.logger.WithFields(logrus.Fields{
		"match_id":  matchID,
		"market_id": marketID,
		"winner":    winnerSelectionID,
		"actor":     actor.UID,
	}).Info("盘口已结算")
	publishChange(ctx, s.publisher, s.logger, model.Change{Type: model.ChangeMarketSettled, MatchID: matchID, MarketID: marketID, At: now})
	return nil
}
