package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/interfaces"
	"BetX/internal/matching"
	"BetX/internal/metrics"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DefaultOddsTimeout 导入时拉取赔率源的超时
const DefaultOddsTimeout = 10 * time.Second

// ImportService 赛事导入：外部赛事幂等导入、手工创建赛事
type ImportService struct {
	repo        repository.MatchRepository
	oddsFeed    interfaces.OddsFeed
	publisher   interfaces.ChangePublisher
	metrics     *metrics.Metrics
	oddsTimeout time.Duration
	logger      *logrus.Logger
	now         func() time.Time
}

// NewImportService oddsFeed 为 nil 时所有导入都使用默认赔率
func NewImportService(repo repository.MatchRepository, oddsFeed interfaces.OddsFeed, publisher interfaces.ChangePublisher, m *metrics.Metrics, oddsTimeout time.Duration, logger *logrus.Logger) *ImportService {
	if oddsTimeout <= 0 {
		oddsTimeout = DefaultOddsTimeout
	}
	return &ImportService{
		repo:        repo,
		oddsFeed:    oddsFeed,
		publisher:   publisher,
		metrics:     m,
		oddsTimeout: oddsTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// ImportResult 导入结果
type ImportResult struct {
	MatchID        string `json:"matchId"`
	AlreadyExisted bool   `json:"alreadyExisted"`
}

// ManualMatchRequest 手工创建赛事
type ManualMatchRequest struct {
	Name      string `json:"name" binding:"required"`
	TeamA     string `json:"teamA" binding:"required"`
	TeamB     string `json:"teamB" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
}

// ImportMatch 按外部赛事ID幂等导入：已存在则不做任何写入
func (s *ImportService) ImportMatch(ctx context.Context, actor model.Principal, c *model.MatchCandidate) (*ImportResult, error) {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return nil, apperr.Validation("Match id is required")
	}
	if strings.TrimSpace(c.TeamA) == "" || strings.TrimSpace(c.TeamB) == "" {
		return nil, apperr.Validation("Both teams are required")
	}

	// 1. 幂等检查
	if _, err := s.repo.GetMatch(ctx, c.ID); err == nil {
		s.metrics.RecordImport(model.MatchSourceAPI, "existing")
		return &ImportResult{MatchID: c.ID, AlreadyExisted: true}, nil
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, fmt.Errorf("查询赛事失败: %w", err)
	}

	startTime, err := ParseStartTime(c.StartTime)
	if err != nil {
		return nil, err
	}

	// 2. 规范化队名 + 3. 匹配赔率（失败不影响导入）
	candidate := matching.Candidate{TeamA: c.TeamA, TeamB: c.TeamB, StartTime: startTime}
	oddsEvent := s.lookupOdds(ctx, candidate)

	now := s.now().UTC()
	status := model.MatchStatusUpcoming
	if strings.EqualFold(c.Status, "live") {
		status = model.MatchStatusLive
	}
	externalID := c.ID
	match := &model.Match{
		ID:              c.ID,
		Name:            c.Name,
		TeamA:           c.TeamA,
		TeamB:           c.TeamB,
		NormalizedTeamA: matching.NormalizeTeamName(c.TeamA),
		NormalizedTeamB: matching.NormalizeTeamName(c.TeamB),
		StartTime:       startTime,
		Status:          status,
		Source:          model.MatchSourceAPI,
		APIIDs:          model.MatchAPIIDs{ExternalMatchID: &externalID},
		Score:           datatypes.JSON(c.Score),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if oddsEvent != nil {
		eventID := oddsEvent.EventID
		match.APIIDs.ExternalOddsEventID = &eventID
	}

	market := defaultMarket(c.ID, actor, now)
	selections := selectionsFromOdds(c.ID, market.ID, oddsEvent, now)
	if len(selections) == 0 {
		selections = defaultSelections(c.ID, market.ID, c.TeamA, c.TeamB, now)
	}

	// 4/5. 赛事+盘口+选项同一事务提交
	created, err := s.repo.CreateMatch(ctx, match, market, selections)
	if err != nil {
		return nil, fmt.Errorf("导入赛事失败: %w", err)
	}
	if !created {
		s.metrics.RecordImport(model.MatchSourceAPI, "existing")
		return &ImportResult{MatchID: c.ID, AlreadyExisted: true}, nil
	}

	s.metrics.RecordImport(model.MatchSourceAPI, "created")
	s.logger.WithFields(logrus.Fields{
		"match_id":   c.ID,
		"odds_event": match.APIIDs.ExternalOddsEventID,
		"selections": len(selections),
		"actor":      actor.UID,
	}).Info("赛事导入完成")
	s.publish(ctx, model.Change{Type: model.ChangeMatchImported, MatchID: c.ID, At: now})

	return &ImportResult{MatchID: c.ID}, nil
}

// CreateManualMatch 手工创建赛事，使用默认盘口与默认赔率
func (s *ImportService) CreateManualMatch(ctx context.Context, actor model.Principal, req *ManualMatchRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.TeamA) == "" || strings.TrimSpace(req.TeamB) == "" {
		return "", apperr.Validation("Both teams are required")
	}
	startTime, err := ParseStartTime(req.StartTime)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	// 不做冲突检查：毫秒时间戳 + 随机后缀
	matchID := fmt.Sprintf("manual_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
	match := &model.Match{
		ID:              matchID,
		Name:            req.Name,
		TeamA:           req.TeamA,
		TeamB:           req.TeamB,
		NormalizedTeamA: matching.NormalizeTeamName(req.TeamA),
		NormalizedTeamB: matching.NormalizeTeamName(req.TeamB),
		StartTime:       startTime,
		Status:          model.MatchStatusUpcoming,
		Source:          model.MatchSourceManual,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	market := defaultMarket(matchID, actor, now)
	selections := defaultSelections(matchID, market.ID, req.TeamA, req.TeamB, now)

	created, err := s.repo.CreateMatch(ctx, match, market, selections)
	if err != nil {
		return "", fmt.Errorf("创建赛事失败: %w", err)
	}
	if !created {
		return "", fmt.Errorf("赛事ID冲突: %s", matchID)
	}

	s.metrics.RecordImport(model.MatchSourceManual, "created")
	s.logger.WithFields(logrus.Fields{"match_id": matchID, "actor": actor.UID}).Info("手工赛事创建完成")
	s.publish(ctx, model.Change{Type: model.ChangeMatchImported, MatchID: matchID, At: now})
	return matchID, nil
}

// lookupOdds 带独立超时拉取赔率源并匹配；任何失败都只记录日志并返回 nil
func (s *ImportService) lookupOdds(ctx context.Context, c matching.Candidate) *model.OddsEvent {
	if s.oddsFeed == nil {
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, s.oddsTimeout)
	defer cancel()

	events, err := s.oddsFeed.FetchCricketOdds(fetchCtx)
	if err != nil {
		s.metrics.RecordOddsFeed("error")
		s.logger.WithError(apperr.Upstream("odds feed unavailable", err)).
			Warn("导入时获取赔率失败，使用默认赔率")
		return nil
	}
	event := matching.FindMatchingOddsEvent(c, events)
	if event == nil {
		s.metrics.RecordOddsFeed("unmatched")
		return nil
	}
	s.metrics.RecordOddsFeed("matched")
	return event
}

func (s *ImportService) publish(ctx context.Context, change model.Change) {
	publishChange(ctx, s.publisher, s.logger, change)
}

func defaultMarket(matchID string, actor model.Principal, now time.Time) *model.Market {
	return &model.Market{
		MatchID:   matchID,
		ID:        model.DefaultMarketID,
		Type:      model.MarketTypeMatchWinner,
		Status:    model.MarketStatusOpen,
		CreatedBy: actor.UID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// selectionsFromOdds 赔率源结果转为选项，跳过非正赔率
func selectionsFromOdds(matchID, marketID string, event *model.OddsEvent, now time.Time) []*model.Selection {
	if event == nil {
		return nil
	}
	selections := make([]*model.Selection, 0, len(event.Odds))
	for _, o := range event.Odds {
		odd, err := model.NewPrice(o.Price)
		if err != nil {
			continue
		}
		selections = append(selections, &model.Selection{
			MatchID:       matchID,
			MarketID:      marketID,
			ID:            fmt.Sprintf("outcome_%d", len(selections)+1),
			Name:          o.Name,
			Odd:           odd,
			Source:        model.SelectionSourceOddsAPI,
			Status:        model.SelectionStatusActive,
			LastUpdatedAt: now,
		})
	}
	return selections
}

// defaultSelections 每队一个选项，默认赔率 1.90
func defaultSelections(matchID, marketID, teamA, teamB string, now time.Time) []*model.Selection {
	selections := make([]*model.Selection, 0, 2)
	for i, name := range []string{teamA, teamB} {
		selections = append(selections, &model.Selection{
			MatchID:       matchID,
			MarketID:      marketID,
			ID:            fmt.Sprintf("outcome_%d", i+1),
			Name:          name,
			Odd:           model.DefaultOdd,
			Source:        model.SelectionSourceManual,
			Status:        model.SelectionStatusActive,
			LastUpdatedAt: now,
		})
	}
	return selections
}

// startTimeLayouts 外部源常见的时间格式；无时区的按 UTC 处理
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseStartTime 解析开赛时间，失败返回 ValidationError
func ParseStartTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("Invalid match start time")
}
