package cricapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"BetX/internal/config"
	"BetX/internal/interfaces"
	"BetX/internal/model"
	"BetX/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const teamTBA = "TBA"

type Adapter struct {
	cfg        *config.FeedConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

type apiResponse struct {
	Status string     `json:"status"`
	Reason string     `json:"reason"`
	Data   []apiMatch `json:"data"`
}

type apiMatch struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Status       string          `json:"status"`
	DateTimeGMT  string          `json:"dateTimeGMT"`
	Teams        []string        `json:"teams"`
	Score        json.RawMessage `json:"score"`
	MatchStarted bool            `json:"matchStarted"`
	MatchEnded   bool            `json:"matchEnded"`
}

// NewCricAPIAdapter cricapi v1 赛事源
func NewCricAPIAdapter(cfg *config.FeedConfig, logger *logrus.Logger) interfaces.MatchFeed {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// FetchCurrentMatches 拉取当前赛事列表，转为可导入的 MatchCandidate
func (a *Adapter) FetchCurrentMatches(ctx context.Context) ([]model.MatchCandidate, error) {
	q := url.Values{}
	q.Set("apikey", a.cfg.APIKey)
	q.Set("offset", "0")
	endpoint := fmt.Sprintf("%s/currentMatches?%s", a.cfg.BaseURL, q.Encode())

	var resp apiResponse
	if err := httpclient.GetJSON(ctx, a.httpClient, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("获取赛事列表失败: %w", err)
	}
	if resp.Status != "success" {
		a.logger.WithFields(logrus.Fields{
			"status": resp.Status,
			"reason": resp.Reason,
		}).Error("Cricket API 返回失败状态")
		return nil, fmt.Errorf("cricket api failed: %s", resp.Status)
	}

	matches := make([]model.MatchCandidate, 0, len(resp.Data))
	for _, m := range resp.Data {
		matches = append(matches, convertMatch(m))
	}
	return matches, nil
}

func convertMatch(m apiMatch) model.MatchCandidate {
	teamA, teamB := teamTBA, teamTBA
	if len(m.Teams) > 0 && m.Teams[0] != "" {
		teamA = m.Teams[0]
	}
	if len(m.Teams) > 1 && m.Teams[1] != "" {
		teamB = m.Teams[1]
	}
	name := m.Name
	if name == "" {
		name = "Unknown Match"
	}
	score := m.Score
	if len(score) == 0 || string(score) == "null" {
		score = json.RawMessage("[]")
	}
	return model.MatchCandidate{
		ID:           m.ID,
		Name:         name,
		TeamA:        teamA,
		TeamB:        teamB,
		StartTime:    m.DateTimeGMT,
		Status:       m.Status,
		Score:        score,
		MatchStarted: m.MatchStarted,
		MatchEnded:   m.MatchEnded,
	}
}
