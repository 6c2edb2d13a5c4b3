package model

import (
	"encoding/json"
	"time"
)

// OddsOutcome 外部赔率源的单个结果
type OddsOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OddsEvent 外部赔率源的一场赛事
type OddsEvent struct {
	EventID      string        `json:"eventId"`
	HomeTeam     string        `json:"homeTeam"`
	AwayTeam     string        `json:"awayTeam"`
	CommenceTime time.Time     `json:"commenceTime"`
	Odds         []OddsOutcome `json:"odds"`
}

// MatchCandidate 外部赛事源的一场赛事（导入入参）
type MatchCandidate struct {
	ID           string          `json:"id" binding:"required"`
	Name         string          `json:"name"`
	TeamA        string          `json:"teamA" binding:"required"`
	TeamB        string          `json:"teamB" binding:"required"`
	StartTime    string          `json:"startTime" binding:"required"`
	Status       string          `json:"status"`
	Score        json.RawMessage `json:"score,omitempty"`
	MatchStarted bool            `json:"matchStarted"`
	MatchEnded   bool            `json:"matchEnded"`
}

// 变更通知类型
const (
	ChangeMatchImported   = "match.imported"
	ChangeMarketAdded     = "market.added"
	ChangeMarketStatus    = "market.status"
	ChangeMarketSettled   = "market.settled"
	ChangeSelectionAdded  = "selection.added"
	ChangeSelectionUpdate = "selection.odd_updated"
)

// Change 推送给看板的文档变更
type Change struct {
	Type        string    `json:"type"`
	MatchID     string    `json:"matchId"`
	MarketID    string    `json:"marketId,omitempty"`
	SelectionID string    `json:"selectionId,omitempty"`
	At          time.Time `json:"at"`
}
