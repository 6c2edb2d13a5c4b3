package adapter

import (
	"sort"

	"BetX/internal/adapter/cricapi"
	"BetX/internal/adapter/oddsapi"
	"BetX/internal/config"
	"BetX/internal/interfaces"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// FeedRegistry 按配置初始化的外部数据源；未配置 api_key 的源为 nil
type FeedRegistry struct {
	Odds    interfaces.OddsFeed
	Matches interfaces.MatchFeed
	logger  *logrus.Logger
}

// NewFeedRegistry 遍历配置中的数据源，创建对应适配器。cache 可为 nil
func NewFeedRegistry(cfg *config.Config, cache *redis.Client, logger *logrus.Logger) *FeedRegistry {
	r := &FeedRegistry{logger: logger}

	names := make([]string, 0, len(cfg.Feeds))
	for name := range cfg.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		feedCfg := cfg.Feeds[name]
		if feedCfg.APIKey == "" || feedCfg.BaseURL == "" {
			logger.WithField("feed", name).Warn("数据源未配置 api_key/base_url，跳过")
			continue
		}
		switch name {
		case config.FeedOdds:
			r.Odds = oddsapi.NewOddsAPIAdapter(&feedCfg, cache, logger)
		case config.FeedCricket:
			r.Matches = cricapi.NewCricAPIAdapter(&feedCfg, logger)
		default:
			logger.WithField("feed", name).Error("未知的数据源类型")
			continue
		}
		logger.WithField("feed", name).Info("数据源初始化成功")
	}
	return r
}

// Enabled 已初始化的数据源名称
func (r *FeedRegistry) Enabled() []string {
	var names []string
	if r.Odds != nil {
		names = append(names, config.FeedOdds)
	}
	if r.Matches != nil {
		names = append(names, config.FeedCricket)
	}
	return names
}
