package matching

import (
	"testing"
	"time"

	"BetX/internal/model"
)

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"India  XI", "indiaxi"},
		{"india-xi", "indiaxi"},
		{"INDIAXI", "indiaxi"},
		{"  Sri Lanka\t", "srilanka"},
		{"Royal Challengers Bengaluru (W)", "royalchallengersbengaluruw"},
		{"Team 11", "team11"},
		{"Müller", "mller"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTeamName(tt.in); got != tt.want {
			t.Errorf("NormalizeTeamName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTeamName_Equivalence(t *testing.T) {
	a := NormalizeTeamName("India  XI")
	b := NormalizeTeamName("india-xi")
	c := NormalizeTeamName("INDIAXI")
	if a != b || b != c {
		t.Errorf("expected equal keys, got %q %q %q", a, b, c)
	}
}

func TestFindMatchingOddsEvent(t *testing.T) {
	start := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	candidate := Candidate{TeamA: "India", TeamB: "Australia", StartTime: start}

	tests := []struct {
		name   string
		feed   []model.OddsEvent
		wantID string
	}{
		{
			name: "reversed home/away within tolerance",
			feed: []model.OddsEvent{
				{EventID: "e1", HomeTeam: "Australia", AwayTeam: "India", CommenceTime: start.Add(30 * time.Minute)},
			},
			wantID: "e1",
		},
		{
			name: "same order, earlier commence time",
			feed: []model.OddsEvent{
				{EventID: "e2", HomeTeam: "india", AwayTeam: "AUSTRALIA", CommenceTime: start.Add(-90 * time.Minute)},
			},
			wantID: "e2",
		},
		{
			name: "exactly at tolerance boundary",
			feed: []model.OddsEvent{
				{EventID: "e3", HomeTeam: "India", AwayTeam: "Australia", CommenceTime: start.Add(2 * time.Hour)},
			},
			wantID: "e3",
		},
		{
			name: "outside tolerance",
			feed: []model.OddsEvent{
				{EventID: "e4", HomeTeam: "Australia", AwayTeam: "India", CommenceTime: start.Add(3 * time.Hour)},
			},
		},
		{
			name: "one team differs",
			feed: []model.OddsEvent{
				{EventID: "e5", HomeTeam: "India", AwayTeam: "England", CommenceTime: start},
			},
		},
		{
			name: "first match in feed order wins",
			feed: []model.OddsEvent{
				{EventID: "skip", HomeTeam: "Pakistan", AwayTeam: "India", CommenceTime: start},
				{EventID: "first", HomeTeam: "India", AwayTeam: "Australia", CommenceTime: start.Add(time.Hour)},
				{EventID: "second", HomeTeam: "India", AwayTeam: "Australia", CommenceTime: start},
			},
			wantID: "first",
		},
		{
			name: "empty feed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindMatchingOddsEvent(candidate, tt.feed)
			if tt.wantID == "" {
				if got != nil {
					t.Fatalf("expected no match, got %q", got.EventID)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %q, got nil", tt.wantID)
			}
			if got.EventID != tt.wantID {
				t.Errorf("got %q, want %q", got.EventID, tt.wantID)
			}
		})
	}
}
