// Package matching 负责把外部赛事与赔率源赛事对齐：队名规范化 + 开赛时间容差
package matching

import (
	"strings"
	"time"

	"BetX/internal/model"
)

// StartTimeTolerance 两个来源开赛时间允许的最大偏差
const StartTimeTolerance = 2 * time.Hour

// NormalizeTeamName 队名转为可比较的键：小写，只保留 [a-z0-9]
func NormalizeTeamName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Candidate 待匹配的赛事
type Candidate struct {
	TeamA     string
	TeamB     string
	StartTime time.Time
}

// FindMatchingOddsEvent 返回 feed 中第一个满足条件的赛事：
// 开赛时间差 <= StartTimeTolerance，且规范化队名按任一主客顺序相同。未命中返回 nil。
func FindMatchingOddsEvent(c Candidate, feed []model.OddsEvent) *model.OddsEvent {
	teamA := NormalizeTeamName(c.TeamA)
	teamB := NormalizeTeamName(c.TeamB)

	for i := range feed {
		event := &feed[i]
		diff := c.StartTime.Sub(event.CommenceTime)
		if diff < 0 {
			diff = -diff
		}
		if diff > StartTimeTolerance {
			continue
		}

		home := NormalizeTeamName(event.HomeTeam)
		away := NormalizeTeamName(event.AwayTeam)
		if (teamA == home && teamB == away) || (teamA == away && teamB == home) {
			return event
		}
	}
	return nil
}
