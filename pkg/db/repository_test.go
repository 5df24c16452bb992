package db_test

import (
	"testing"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/internal/testutil"
)

func TestEnsureUserCreatesAndRefreshes(t *testing.T) {
	testutil.SetupTestDB(t)

	if err := db.EnsureUser(1, "alex", "Alex"); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if err := db.EnsureUser(1, "alex", "Alexandre"); err != nil {
		t.Fatalf("EnsureUser update failed: %v", err)
	}

	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
	var user db.User
	db.DB.First(&user, "user_id = ?", int64(1))
	if user.FirstName != "Alexandre" {
		t.Errorf("first name = %q, want Alexandre", user.FirstName)
	}
}

func TestSumPointsScopesToWeekAndCycle(t *testing.T) {
	testutil.SetupTestDB(t)

	now := time.Now()
	db.DB.Create(&db.Submission{UserID: 1, SubmittedAt: now, PointsAwarded: 5, WeekNum: 40, CycleNum: 1})
	db.DB.Create(&db.Submission{UserID: 1, SubmittedAt: now, PointsAwarded: 3, WeekNum: 40, CycleNum: 1})
	db.DB.Create(&db.Submission{UserID: 1, SubmittedAt: now, PointsAwarded: 5, WeekNum: 41, CycleNum: 1})
	db.DB.Create(&db.Submission{UserID: 1, SubmittedAt: now, PointsAwarded: 5, WeekNum: 40, CycleNum: 2})
	db.DB.Create(&db.Submission{UserID: 2, SubmittedAt: now, PointsAwarded: 5, WeekNum: 40, CycleNum: 1})

	total, err := db.SumPoints(1, 40, 1)
	if err != nil {
		t.Fatalf("SumPoints failed: %v", err)
	}
	if total != 8 {
		t.Errorf("SumPoints = %d, want 8", total)
	}

	count, err := db.CountSubmissions(1, 40, 1)
	if err != nil {
		t.Fatalf("CountSubmissions failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountSubmissions = %d, want 2", count)
	}
}

func TestCycleStandingsOrderAndTieBreak(t *testing.T) {
	testutil.SetupTestDB(t)

	now := time.Now()
	for _, u := range []db.User{
		{UserID: 1, FirstName: "Alex"},
		{UserID: 2, FirstName: "Bruna"},
		{UserID: 3, FirstName: "Caio"},
	} {
		db.DB.Create(&u)
	}
	db.DB.Create(&db.Submission{UserID: 1, SubmittedAt: now, PointsAwarded: 5, WeekNum: 40, CycleNum: 1})
	db.DB.Create(&db.Submission{UserID: 2, SubmittedAt: now, PointsAwarded: 8, WeekNum: 40, CycleNum: 1})
	db.DB.Create(&db.Submission{UserID: 3, SubmittedAt: now, PointsAwarded: 5, WeekNum: 41, CycleNum: 1})

	standings, err := db.CycleStandings(1)
	if err != nil {
		t.Fatalf("CycleStandings failed: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(standings))
	}
	if standings[0].UserID != 2 {
		t.Errorf("top scorer = %d, want 2", standings[0].UserID)
	}
	// 1 and 3 tie on 5 points; the lower user id ranks first.
	if standings[1].UserID != 1 || standings[2].UserID != 3 {
		t.Errorf("tie-break order = %d, %d, want 1, 3", standings[1].UserID, standings[2].UserID)
	}

	top, err := db.TopScorer(1)
	if err != nil {
		t.Fatalf("TopScorer failed: %v", err)
	}
	if top == nil || top.UserID != 2 || top.Points != 8 {
		t.Errorf("TopScorer = %+v, want user 2 with 8 points", top)
	}
}

func TestTopScorerEmptyCycle(t *testing.T) {
	testutil.SetupTestDB(t)

	top, err := db.TopScorer(9)
	if err != nil {
		t.Fatalf("TopScorer failed: %v", err)
	}
	if top != nil {
		t.Errorf("expected nil top scorer, got %+v", top)
	}
}

func TestPotAggregates(t *testing.T) {
	testutil.SetupTestDB(t)

	now := time.Now()
	for _, u := range []db.User{
		{UserID: 1, FirstName: "Alex"},
		{UserID: 2, FirstName: "Bruna"},
	} {
		db.DB.Create(&u)
	}
	db.DB.Create(&db.PotDeposit{UserID: 1, Amount: 35, DepositedAt: now, CycleNum: 1})
	db.DB.Create(&db.PotDeposit{UserID: 1, Amount: 15, DepositedAt: now, CycleNum: 1})
	db.DB.Create(&db.PotDeposit{UserID: 2, Amount: 20, DepositedAt: now, CycleNum: 1})
	db.DB.Create(&db.PotDeposit{UserID: 2, Amount: 99, DepositedAt: now, CycleNum: 2})

	total, err := db.PotTotal(1)
	if err != nil {
		t.Fatalf("PotTotal failed: %v", err)
	}
	if total != 70 {
		t.Errorf("PotTotal = %.2f, want 70.00", total)
	}

	contributions, err := db.PotByUser(1)
	if err != nil {
		t.Fatalf("PotByUser failed: %v", err)
	}
	if len(contributions) != 2 {
		t.Fatalf("expected 2 contributions, got %d", len(contributions))
	}
	if contributions[0].UserID != 1 || contributions[0].Total != 50 {
		t.Errorf("top contribution = %+v, want user 1 with 50.00", contributions[0])
	}
}
