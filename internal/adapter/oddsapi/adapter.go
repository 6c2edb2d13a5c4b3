package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"BetX/internal/config"
	"BetX/internal/interfaces"
	"BetX/internal/model"
	"BetX/internal/utils/httpclient"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Adapter the-odds-api v4 赔率源，可选 Redis 缓存以节省调用配额
type Adapter struct {
	cfg        *config.FeedConfig
	httpClient *http.Client
	cache      *redis.Client
	logger     *logrus.Logger
}

// apiEvent the-odds-api /sports/{sport}/odds 的单条返回
type apiEvent struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string              `json:"key"`
			Outcomes []model.OddsOutcome `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// NewOddsAPIAdapter cache 为 nil 时不缓存
func NewOddsAPIAdapter(cfg *config.FeedConfig, cache *redis.Client, logger *logrus.Logger) interfaces.OddsFeed {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		cache:      cache,
		logger:     logger,
	}
}

func (a *Adapter) cacheKey() string {
	return fmt.Sprintf("betx:odds:%s", a.cfg.SportKey)
}

// FetchCricketOdds 拉取板球赔率；取第一家博彩公司的第一个盘口作为结果列表
func (a *Adapter) FetchCricketOdds(ctx context.Context) ([]model.OddsEvent, error) {
	if events, ok := a.readCache(ctx); ok {
		return events, nil
	}

	q := url.Values{}
	q.Set("apiKey", a.cfg.APIKey)
	q.Set("regions", a.cfg.Regions)
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "decimal")
	endpoint := fmt.Sprintf("%s/%s/odds?%s", a.cfg.BaseURL, a.cfg.SportKey, q.Encode())

	var raw []apiEvent
	if err := httpclient.GetJSON(ctx, a.httpClient, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("获取赔率失败: %w", err)
	}

	events := convertEvents(raw)
	a.writeCache(ctx, events)
	return events, nil
}

func convertEvents(raw []apiEvent) []model.OddsEvent {
	events := make([]model.OddsEvent, 0, len(raw))
	for _, e := range raw {
		outcomes := []model.OddsOutcome{}
		if len(e.Bookmakers) > 0 && len(e.Bookmakers[0].Markets) > 0 {
			outcomes = e.Bookmakers[0].Markets[0].Outcomes
		}
		events = append(events, model.OddsEvent{
			EventID:      e.ID,
			HomeTeam:     e.HomeTeam,
			AwayTeam:     e.AwayTeam,
			CommenceTime: e.CommenceTime,
			Odds:         outcomes,
		})
	}
	return events
}

func (a *Adapter) readCache(ctx context.Context) ([]model.OddsEvent, bool) {
	if a.cache == nil || a.cfg.CacheTTL <= 0 {
		return nil, false
	}
	data, err := a.cache.Get(ctx, a.cacheKey()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			a.logger.WithError(err).Warn("读取赔率缓存失败")
		}
		return nil, false
	}
	var events []model.OddsEvent
	if err := json.Unmarshal(data, &events); err != nil {
		a.logger.WithError(err).Warn("赔率缓存内容损坏，忽略")
		return nil, false
	}
	return events, true
}

func (a *Adapter) writeCache(ctx context.Context, events []model.OddsEvent) {
	if a.cache == nil || a.cfg.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, a.cacheKey(), data, a.cfg.CacheTTL).Err(); err != nil {
		a.logger.WithError(err).Warn("写入赔率缓存失败")
	}
}
