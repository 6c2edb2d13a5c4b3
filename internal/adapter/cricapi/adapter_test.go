package cricapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"BetX/internal/config"

	"github.com/sirupsen/logrus"
)

func TestFetchCurrentMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/currentMatches" || r.URL.Query().Get("apikey") != "secret" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": [
				{"id": "m1", "name": "India vs Australia, 1st T20I", "status": "Live",
				 "dateTimeGMT": "2026-03-01T14:00:00", "teams": ["India", "Australia"],
				 "score": [{"r": 120, "w": 3, "o": 14.2}], "matchStarted": true, "matchEnded": false},
				{"id": "m2", "status": "Match not started", "dateTimeGMT": "2026-03-05T09:00:00", "teams": []}
			]
		}`))
	}))
	defer srv.Close()

	feed := NewCricAPIAdapter(&config.FeedConfig{BaseURL: srv.URL, APIKey: "secret", Timeout: 2}, logrus.New())
	matches, err := feed.FetchCurrentMatches(context.Background())
	if err != nil {
		t.Fatalf("FetchCurrentMatches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len = %d", len(matches))
	}
	if matches[0].TeamA != "India" || matches[0].TeamB != "Australia" || !matches[0].MatchStarted {
		t.Errorf("unexpected first match %+v", matches[0])
	}
	if matches[1].TeamA != "TBA" || matches[1].TeamB != "TBA" || matches[1].Name != "Unknown Match" {
		t.Errorf("defaults not applied: %+v", matches[1])
	}
	if string(matches[1].Score) != "[]" {
		t.Errorf("score = %s, want []", matches[1].Score)
	}
}

func TestFetchCurrentMatches_FailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "failure", "reason": "hits today exceeded hits limit"}`))
	}))
	defer srv.Close()

	feed := NewCricAPIAdapter(&config.FeedConfig{BaseURL: srv.URL, Timeout: 2}, logrus.New())
	if _, err := feed.FetchCurrentMatches(context.Background()); err == nil {
		t.Fatal("expected error for failure status")
	}
}
