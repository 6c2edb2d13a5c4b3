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

// OddsSyncService 按需从赔率源刷新已关联赛事的默认盘口赔率
type OddsSyncService struct {
	repo      repository.MatchRepository
	oddsFeed  interfaces.OddsFeed
	publisher interfaces.ChangePublisher
	metrics   *metrics.Metrics
	timeout   time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

// OddsSyncResult 一次刷新的统计
type OddsSyncResult struct {
	Matches int `json:"matches"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

func NewOddsSyncService(repo repository.MatchRepository, oddsFeed interfaces.OddsFeed, publisher interfaces.ChangePublisher, m *metrics.Metrics, timeout time.Duration, logger *logrus.Logger) *OddsSyncService {
	if timeout <= 0 {
		timeout = DefaultOddsTimeout
	}
	return &OddsSyncService{
		repo:      repo,
		oddsFeed:  oddsFeed,
		publisher: publisher,
		metrics:   m,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Run 只更新来源为赔率源的选项（按名称对应），手工选项与已关闭盘口不动；单赛事失败不阻塞整次运行
func (s *OddsSyncService) Run(ctx context.Context, limit int) (*OddsSyncResult, error) {
	if s.oddsFeed == nil {
		return nil, apperr.InvalidState("Odds feed is not configured")
	}
	if limit <= 0 {
		limit = 500
	}
	matches, err := s.repo.ListOddsLinkedMatches(ctx, limit)
	if err != nil {
		return nil, err
	}
	result := &OddsSyncResult{Matches: len(matches)}
	if len(matches) == 0 {
		s.logger.Debug("OddsSync: 无关联赔率源的赛事")
		return result, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	events, err := s.oddsFeed.FetchCricketOdds(fetchCtx)
	if err != nil {
		s.metrics.RecordOddsFeed("error")
		return nil, apperr.Upstream("Failed to fetch odds feed", err)
	}
	byEventID := make(map[string]*model.OddsEvent, len(events))
	for i := range events {
		byEventID[events[i].EventID] = &events[i]
	}

	for _, match := range matches {
		event := byEventID[*match.APIIDs.ExternalOddsEventID]
		if event == nil {
			result.Skipped++
			continue
		}
		updated, err := s.syncMatch(ctx, match.ID, event)
		if err != nil {
			s.logger.WithError(err).WithField("match_id", match.ID).Warn("OddsSync: 更新赔率失败，跳过")
			result.Skipped++
			continue
		}
		result.Updated += updated
	}

	s.logger.WithFields(logrus.Fields{
		"matches": result.Matches,
		"updated": result.Updated,
		"skipped": result.Skipped,
	}).Info("OddsSync: 赔率刷新完成")
	return result, nil
}

func (s *OddsSyncService) syncMatch(ctx context.Context, matchID string, event *model.OddsEvent) (int, error) {
	selections, err := s.repo.ListSelections(ctx, matchID, model.DefaultMarketID)
	if err != nil {
		return 0, err
	}
	prices := make(map[string]float64, len(event.Odds))
	for _, o := range event.Odds {
		prices[o.Name] = o.Price
	}

	updated := 0
	for _, sel := range selections {
		if sel.Source != model.SelectionSourceOddsAPI {
			continue
		}
		price, ok := prices[sel.Name]
		if !ok {
			continue
		}
		odd, err := model.NewPrice(price)
		if err != nil || odd.Equal(sel.Odd.Decimal) {
			continue
		}
		now := s.now().UTC()
		if err := s.repo.UpdateSelectionOdd(ctx, matchID, model.DefaultMarketID, sel.ID, odd, now); err != nil {
			if apperr.Is(err, apperr.KindInvalidState) {
				// 盘口已关闭，后续选项同样不可改
				return updated, nil
			}
			return updated, err
		}
		updated++
		s.metrics.RecordOddUpdate()
		publishChange(ctx, s.publisher, s.logger, model.Change{
			Type: model.ChangeSelectionUpdate, MatchID: matchID, MarketID: model.DefaultMarketID, SelectionID: sel.ID, At: now,
		})
	}
	return updated, nil
}
