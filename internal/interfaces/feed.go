package interfaces

import (
	"context"

	"BetX/internal/model"
)

// OddsFeed 外部赔率源（the-odds-api 等），可能失败或超时
type OddsFeed interface {
	FetchCricketOdds(ctx context.Context) ([]model.OddsEvent, error)
}

// MatchFeed 外部赛事源，供后台发现可导入的赛事
type MatchFeed interface {
	FetchCurrentMatches(ctx context.Context) ([]model.MatchCandidate, error)
}
