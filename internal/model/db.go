package model

import (
	"time"

	"gorm.io/datatypes"
)

// 赛事状态
const (
	MatchStatusUpcoming = "upcoming"
	MatchStatusLive     = "live"
	MatchStatusFinished = "finished"
)

// 赛事来源
const (
	MatchSourceAPI    = "api"
	MatchSourceManual = "manual"
)

// 盘口状态
const (
	MarketStatusOpen      = "open"
	MarketStatusSuspended = "suspended"
	MarketStatusClosed    = "closed"
)

// 默认盘口
const (
	MarketTypeMatchWinner = "match_winner"
	MarketTypeToss        = "toss"
	DefaultMarketID       = "match_winner"
)

// 选项状态与来源
const (
	SelectionStatusActive = "active"
	SelectionStatusWon    = "won"
	SelectionStatusLost   = "lost"

	SelectionSourceOddsAPI = "odds_api"
	SelectionSourceManual  = "manual"
)

// VoidSelectionID 结算时传入该值表示盘口作废：所有选项判负，无赢家
const VoidSelectionID = "void"

// MatchAPIIDs 外部数据源中的原生ID
type MatchAPIIDs struct {
	ExternalMatchID     *string `gorm:"column:external_match_id;type:varchar(128)" json:"externalMatchId"`
	ExternalOddsEventID *string `gorm:"column:external_odds_event_id;type:varchar(128)" json:"externalOddsEventId"`
}

type Match struct {
	ID              string         `gorm:"column:id;primaryKey;type:varchar(128);comment:外部赛事ID或manual_前缀ID" json:"id"`
	Name            string         `gorm:"column:name;type:varchar(256);not null" json:"name"`
	TeamA           string         `gorm:"column:team_a;type:varchar(128);not null" json:"teamA"`
	TeamB           string         `gorm:"column:team_b;type:varchar(128);not null" json:"teamB"`
	NormalizedTeamA string         `gorm:"column:normalized_team_a;type:varchar(128);index" json:"normalizedTeamA"`
	NormalizedTeamB string         `gorm:"column:normalized_team_b;type:varchar(128);index" json:"normalizedTeamB"`
	StartTime       time.Time      `gorm:"column:start_time;type:timestamp;not null;index" json:"startTime"`
	Status          string         `gorm:"column:status;type:varchar(32);not null;default:'upcoming'" json:"status"`
	Source          string         `gorm:"column:source;type:varchar(16);not null" json:"source"`
	APIIDs          MatchAPIIDs    `gorm:"embedded" json:"apiIds"`
	Score           datatypes.JSON `gorm:"column:score;type:jsonb;comment:外部比分原样透传" json:"score"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;type:timestamp" json:"updatedAt"`
}

type Market struct {
	MatchID           string     `gorm:"column:match_id;primaryKey;type:varchar(128)" json:"matchId"`
	ID                string     `gorm:"column:id;primaryKey;type:varchar(128)" json:"id"`
	Type              string     `gorm:"column:type;type:varchar(64);not null;comment:toss/session/fancy/lambi/match_winner" json:"type"`
	Status            string     `gorm:"column:status;type:varchar(16);not null;default:'open'" json:"status"`
	WinnerSelectionID *string    `gorm:"column:winner_selection_id;type:varchar(128)" json:"winnerSelectionId"`
	SettledAt         *time.Time `gorm:"column:settled_at;type:timestamp" json:"settledAt"`
	SettledBy         string     `gorm:"column:settled_by;type:varchar(128)" json:"settledBy,omitempty"`
	CreatedBy         string     `gorm:"column:created_by;type:varchar(128)" json:"createdBy,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;type:timestamp" json:"updatedAt"`
}

type Selection struct {
	MatchID       string    `gorm:"column:match_id;primaryKey;type:varchar(128)" json:"matchId"`
	MarketID      string    `gorm:"column:market_id;primaryKey;type:varchar(128)" json:"marketId"`
	ID            string    `gorm:"column:id;primaryKey;type:varchar(128)" json:"id"`
	Name          string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Odd           Price     `gorm:"column:odd;type:numeric(10,4);not null" json:"odd"`
	Source        string    `gorm:"column:source;type:varchar(16);not null" json:"source"`
	Status        string    `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	LastUpdatedAt time.Time `gorm:"column:last_updated_at;type:timestamp" json:"lastUpdatedAt"`
}

func (Match) TableName() string     { return "matches" }
func (Market) TableName() string    { return "markets" }
func (Selection) TableName() string { return "selections" }
