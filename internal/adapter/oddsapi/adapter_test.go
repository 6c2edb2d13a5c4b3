package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"BetX/internal/config"

	"github.com/sirupsen/logrus"
)

const oddsResponse = `[
  {
    "id": "evt-1",
    "sport_key": "cricket_t20_intl",
    "commence_time": "2026-03-01T14:00:00Z",
    "home_team": "Australia",
    "away_team": "India",
    "bookmakers": [
      {"key": "pinnacle", "markets": [{"key": "h2h", "outcomes": [
        {"name": "Australia", "price": 2.1},
        {"name": "India", "price": 1.75}
      ]}]}
    ]
  },
  {
    "id": "evt-2",
    "sport_key": "cricket_t20_intl",
    "commence_time": "2026-03-02T09:30:00Z",
    "home_team": "Nepal",
    "away_team": "Oman",
    "bookmakers": []
  }
]`

func TestFetchCricketOdds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cricket_t20_intl/odds" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("apiKey") != "k" || q.Get("markets") != "h2h" || q.Get("oddsFormat") != "decimal" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(oddsResponse))
	}))
	defer srv.Close()

	feed := NewOddsAPIAdapter(&config.FeedConfig{
		BaseURL:  srv.URL,
		APIKey:   "k",
		SportKey: "cricket_t20_intl",
		Regions:  "intl",
		Timeout:  2,
	}, nil, logrus.New())

	events, err := feed.FetchCricketOdds(context.Background())
	if err != nil {
		t.Fatalf("FetchCricketOdds: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	first := events[0]
	if first.EventID != "evt-1" || first.HomeTeam != "Australia" || first.AwayTeam != "India" {
		t.Errorf("unexpected event %+v", first)
	}
	if !first.CommenceTime.Equal(time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("commence time = %v", first.CommenceTime)
	}
	if len(first.Odds) != 2 || first.Odds[1].Price != 1.75 {
		t.Errorf("odds = %+v", first.Odds)
	}
	if len(events[1].Odds) != 0 {
		t.Errorf("event without bookmakers should have no odds, got %+v", events[1].Odds)
	}
}

func TestFetchCricketOdds_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	feed := NewOddsAPIAdapter(&config.FeedConfig{BaseURL: srv.URL, SportKey: "cricket_t20_intl", Timeout: 2}, nil, logrus.New())
	if _, err := feed.FetchCricketOdds(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
