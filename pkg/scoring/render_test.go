package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/db"
)

func TestWeeklyReportTextOrdersAndFormatsDebts(t *testing.T) {
	entries := []WeeklyEntry{
		{UserID: 2, Name: "Bruna", Points: 12, Debt: 0},
		{UserID: 1, Name: "Alex", Points: 3, Debt: 35},
	}
	text := WeeklyReportText(42, entries)

	if !strings.Contains(text, "Week 42 Leaderboard") {
		t.Errorf("missing header: %q", text)
	}
	bruna := strings.Index(text, "Bruna")
	alex := strings.Index(text, "Alex")
	if bruna < 0 || alex < 0 || bruna > alex {
		t.Errorf("expected Bruna listed above Alex: %q", text)
	}
	if !strings.Contains(text, "🥇 Bruna: 12 points") {
		t.Errorf("missing first place badge: %q", text)
	}
	if !strings.Contains(text, "• Alex: R$ 35.00") {
		t.Errorf("missing debt line: %q", text)
	}
	if strings.Contains(text, "Bruna: R$") {
		t.Errorf("debt-free user must not appear in the bet section: %q", text)
	}
}

func TestWeeklyReportTextNoDebts(t *testing.T) {
	entries := []WeeklyEntry{{UserID: 1, Name: "Alex", Points: 10, Debt: 0}}
	text := WeeklyReportText(42, entries)
	if !strings.Contains(text, "nobody owes the pot") {
		t.Errorf("expected congratulation line: %q", text)
	}
}

func TestLeaderboardText(t *testing.T) {
	c := &db.Cycle{
		ID:        1,
		StartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
	}
	standings := []db.Standing{
		{UserID: 2, FirstName: "Bruna", Points: 12},
		{UserID: 1, FirstName: "Alex", Points: 3},
	}
	text := LeaderboardText(c, standings)
	if !strings.Contains(text, "from 2025-10-01 to 2025-11-30") {
		t.Errorf("missing cycle range: %q", text)
	}
	if !strings.Contains(text, "🥇 Bruna: 12 points") || !strings.Contains(text, "🥈 Alex: 3 points") {
		t.Errorf("missing standings: %q", text)
	}
}

func TestLeaderboardTextEmpty(t *testing.T) {
	c := &db.Cycle{ID: 1,
		StartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
	}
	if text := LeaderboardText(c, nil); !strings.Contains(text, "Nobody has scored") {
		t.Errorf("expected empty-cycle message: %q", text)
	}
}

func TestPotReportText(t *testing.T) {
	contributions := []db.Contribution{
		{UserID: 1, FirstName: "Alex", Total: 35},
	}
	text := PotReportText(1, 35, contributions)
	if !strings.Contains(text, "Total in the pot: R$ 35.00") {
		t.Errorf("missing total: %q", text)
	}
	if !strings.Contains(text, "• Alex: R$ 35.00") {
		t.Errorf("missing contribution line: %q", text)
	}
}

func TestCycleCloseSummaryText(t *testing.T) {
	winner := &db.Standing{UserID: 2, FirstName: "Bruna", Points: 40}

	withPot := CycleCloseSummaryText(1, winner, 150)
	if !strings.Contains(withPot, "Bruna") || !strings.Contains(withPot, "R$ 150.00") {
		t.Errorf("missing winner or prize: %q", withPot)
	}

	emptyPot := CycleCloseSummaryText(1, winner, 0)
	if !strings.Contains(emptyPot, "pot is empty") {
		t.Errorf("expected empty-pot message: %q", emptyPot)
	}

	noWinner := CycleCloseSummaryText(1, nil, 0)
	if !strings.Contains(noWinner, "no scores recorded") {
		t.Errorf("expected no-winner message: %q", noWinner)
	}
}

func TestSubmissionReceivedText(t *testing.T) {
	text := SubmissionReceivedText("Alex", Award{Points: 5, Ordinal: 1})
	if !strings.Contains(text, "+5 points") || !strings.Contains(text, "(1 of 2 this week)") {
		t.Errorf("unexpected submission text: %q", text)
	}
}
