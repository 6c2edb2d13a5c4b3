package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestImportMatch_WithMatchedOdds(t *testing.T) {
	env := newTestEnv(t)
	env.feed.events = []model.OddsEvent{
		{EventID: "other", HomeTeam: "England", AwayTeam: "Pakistan", CommenceTime: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)},
		{
			EventID:      "odds-123",
			HomeTeam:     "Australia",
			AwayTeam:     "india",
			CommenceTime: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
			Odds: []model.OddsOutcome{
				{Name: "Australia", Price: 2.25},
				{Name: "India", Price: 1.65},
				{Name: "Draw", Price: 0},
			},
		},
	}
	ctx := context.Background()

	res, err := env.imports.ImportMatch(ctx, testAdmin, candidate("cric-1"))
	if err != nil {
		t.Fatalf("ImportMatch: %v", err)
	}
	if res.MatchID != "cric-1" || res.AlreadyExisted {
		t.Fatalf("unexpected result %+v", res)
	}

	match, err := env.repo.GetMatch(ctx, "cric-1")
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if match.Source != model.MatchSourceAPI || match.Status != model.MatchStatusUpcoming {
		t.Errorf("source/status = %s/%s", match.Source, match.Status)
	}
	if match.NormalizedTeamA != "india" || match.NormalizedTeamB != "australia" {
		t.Errorf("normalized teams = %s/%s", match.NormalizedTeamA, match.NormalizedTeamB)
	}
	if match.APIIDs.ExternalOddsEventID == nil || *match.APIIDs.ExternalOddsEventID != "odds-123" {
		t.Errorf("external odds event id = %v", match.APIIDs.ExternalOddsEventID)
	}

	market, err := env.repo.GetMarket(ctx, "cric-1", model.DefaultMarketID)
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if market.Status != model.MarketStatusOpen || market.Type != model.MarketTypeMatchWinner || market.CreatedBy != testAdmin.UID {
		t.Errorf("unexpected market %+v", market)
	}

	sels, err := env.repo.ListSelections(ctx, "cric-1", model.DefaultMarketID)
	if err != nil {
		t.Fatalf("ListSelections: %v", err)
	}
	if len(sels) != 2 {
		t.Fatalf("expected 2 selections (non-positive price skipped), got %d", len(sels))
	}
	want := map[string]float64{"Australia": 2.25, "India": 1.65}
	for _, s := range sels {
		if s.Source != model.SelectionSourceOddsAPI {
			t.Errorf("%s source = %s", s.Name, s.Source)
		}
		if got := s.Odd.Float64(); got != want[s.Name] {
			t.Errorf("%s odd = %v, want %v", s.Name, got, want[s.Name])
		}
	}
	if got := testutil.ToFloat64(env.metrics.OddsFeedFetches.WithLabelValues("matched")); got != 1 {
		t.Errorf("matched fetches = %v", got)
	}
	if env.publisher.count() != 1 {
		t.Errorf("expected 1 change, got %d", env.publisher.count())
	}
}

func TestImportMatch_DefaultOddsWhenUnmatched(t *testing.T) {
	env := newTestEnv(t)
	env.feed.events = []model.OddsEvent{
		// 队名一致但相差超过2小时
		{EventID: "late", HomeTeam: "India", AwayTeam: "Australia", CommenceTime: time.Date(2026, 3, 1, 16, 30, 0, 0, time.UTC),
			Odds: []model.OddsOutcome{{Name: "India", Price: 1.5}, {Name: "Australia", Price: 2.6}}},
	}
	ctx := context.Background()

	if _, err := env.imports.ImportMatch(ctx, testAdmin, candidate("cric-2")); err != nil {
		t.Fatalf("ImportMatch: %v", err)
	}
	assertDefaultSelections(t, env, "cric-2")

	match, _ := env.repo.GetMatch(ctx, "cric-2")
	if match.APIIDs.ExternalOddsEventID != nil {
		t.Errorf("expected no odds event link, got %s", *match.APIIDs.ExternalOddsEventID)
	}
}

func TestImportMatch_FeedFailureFallsBackToDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.feed.err = errors.New("quota exceeded")

	res, err := env.imports.ImportMatch(context.Background(), testAdmin, candidate("cric-3"))
	if err != nil {
		t.Fatalf("feed failure must not fail the import: %v", err)
	}
	if res.AlreadyExisted {
		t.Fatal("expected a new match")
	}
	assertDefaultSelections(t, env, "cric-3")
	if got := testutil.ToFloat64(env.metrics.OddsFeedFetches.WithLabelValues("error")); got != 1 {
		t.Errorf("error fetches = %v", got)
	}
}

func TestImportMatch_NilFeed(t *testing.T) {
	env := newTestEnv(t)
	env.imports.oddsFeed = nil

	if _, err := env.imports.ImportMatch(context.Background(), testAdmin, candidate("cric-4")); err != nil {
		t.Fatalf("ImportMatch: %v", err)
	}
	assertDefaultSelections(t, env, "cric-4")
}

func TestImportMatch_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.imports.ImportMatch(ctx, testAdmin, candidate("cric-5")); err != nil {
		t.Fatalf("first import: %v", err)
	}
	before, _ := env.repo.GetMatch(ctx, "cric-5")
	markets := env.countRows(t, "markets")
	selections := env.countRows(t, "selections")
	changes := env.publisher.count()
	feedCalls := env.feed.calls

	second := candidate("cric-5")
	second.TeamA = "Renamed"
	res, err := env.imports.ImportMatch(ctx, testAdmin, second)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !res.AlreadyExisted || res.MatchID != "cric-5" {
		t.Fatalf("expected already-existed result, got %+v", res)
	}

	after, _ := env.repo.GetMatch(ctx, "cric-5")
	if after.TeamA != "India" || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("existing match must not be modified")
	}
	if env.countRows(t, "markets") != markets || env.countRows(t, "selections") != selections {
		t.Error("second import must not write markets or selections")
	}
	if env.publisher.count() != changes {
		t.Error("second import must not publish a change")
	}
	if env.feed.calls != feedCalls {
		t.Error("second import must not call the odds feed")
	}
}

func TestImportMatch_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(c *model.MatchCandidate)
		wantMsg string
	}{
		{"missing id", func(c *model.MatchCandidate) { c.ID = " " }, "Match id is required"},
		{"missing team", func(c *model.MatchCandidate) { c.TeamB = "" }, "Both teams are required"},
		{"bad start time", func(c *model.MatchCandidate) { c.StartTime = "next tuesday" }, "Invalid match start time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidate("cric-bad")
			tt.mutate(c)
			_, err := env.imports.ImportMatch(ctx, testAdmin, c)
			assertKind(t, err, apperr.KindValidation)
			if apperr.MessageOf(err) != tt.wantMsg {
				t.Errorf("message = %q", apperr.MessageOf(err))
			}
		})
	}
	if env.countRows(t, "matches") != 0 {
		t.Error("invalid imports must not write")
	}
}

func TestImportMatch_LiveStatus(t *testing.T) {
	env := newTestEnv(t)
	c := candidate("cric-live")
	c.Status = "LIVE"
	if _, err := env.imports.ImportMatch(context.Background(), testAdmin, c); err != nil {
		t.Fatalf("ImportMatch: %v", err)
	}
	match, _ := env.repo.GetMatch(context.Background(), "cric-live")
	if match.Status != model.MatchStatusLive {
		t.Errorf("status = %s", match.Status)
	}
}

func TestCreateManualMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.imports.CreateManualMatch(ctx, testAdmin, &ManualMatchRequest{
		Name:      "Local Derby",
		TeamA:     "Mumbai Strikers",
		TeamB:     "Pune Royals",
		StartTime: "2026-03-05 18:30",
	})
	if err != nil {
		t.Fatalf("CreateManualMatch: %v", err)
	}
	if !strings.HasPrefix(id, "manual_") {
		t.Errorf("id = %s", id)
	}

	match, err := env.repo.GetMatch(ctx, id)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if match.Source != model.MatchSourceManual {
		t.Errorf("source = %s", match.Source)
	}
	if !match.StartTime.Equal(time.Date(2026, 3, 5, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("start time = %v", match.StartTime)
	}
	assertDefaultSelections(t, env, id)
	if env.feed.calls != 0 {
		t.Error("manual matches must not consult the odds feed")
	}
}

func TestCreateManualMatch_BadDateWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.imports.CreateManualMatch(context.Background(), testAdmin, &ManualMatchRequest{
		Name: "x", TeamA: "A", TeamB: "B", StartTime: "31/02/2026",
	})
	assertKind(t, err, apperr.KindValidation)
	for _, table := range []string{"matches", "markets", "selections"} {
		if n := env.countRows(t, table); n != 0 {
			t.Errorf("%s has %d rows", table, n)
		}
	}
}

func TestParseStartTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-03-01T14:00:00Z",
		"2026-03-01T19:30:00+05:30",
		"2026-03-01T14:00:00",
		"2026-03-01T14:00",
		"2026-03-01 14:00:00",
		" 2026-03-01 14:00 ",
	} {
		got, err := ParseStartTime(in)
		if err != nil {
			t.Errorf("ParseStartTime(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseStartTime(%q) = %v", in, got)
		}
	}
	if _, err := ParseStartTime(""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("empty string: %v", err)
	}
}

func assertDefaultSelections(t *testing.T, env *testEnv, matchID string) {
	t.Helper()
	sels, err := env.repo.ListSelections(context.Background(), matchID, model.DefaultMarketID)
	if err != nil {
		t.Fatalf("ListSelections: %v", err)
	}
	if len(sels) != 2 {
		t.Fatalf("expected 2 default selections, got %d", len(sels))
	}
	for _, s := range sels {
		if s.Odd.Float64() != 1.9 {
			t.Errorf("%s odd = %v, want 1.9", s.Name, s.Odd.Float64())
		}
		if s.Status != model.SelectionStatusActive {
			t.Errorf("%s status = %s", s.Name, s.Status)
		}
	}
}
