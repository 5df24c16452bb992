package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/internal/testutil"
)

func TestDebugCommandsRequireAdmin(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	setupHandlerDeps(t, b)

	HandleDebugJobs(context.Background(), b, newGroupUpdate("/debug_jobs", 1))

	if !strings.Contains(client.lastMessageText(t), "Only admins") {
		t.Errorf("expected admin rejection, got %q", client.lastMessageText(t))
	}
}

func TestHandleDebugJobsListsTriggers(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	deps := setupHandlerDeps(t, b)

	if err := deps.Scheduler.RegisterRecurring("weekly_report_-100900", "0 0 23 * * 0", "weekly_report", func() {}); err != nil {
		t.Fatalf("failed to register trigger: %v", err)
	}

	HandleDebugJobs(context.Background(), b, newGroupUpdate("/debug_jobs", adminUserID))

	text := client.lastMessageText(t)
	if !strings.Contains(text, "Registered triggers (1):") {
		t.Errorf("expected trigger count, got %q", text)
	}
	if !strings.Contains(text, "weekly_report_-100900 [weekly_report]") {
		t.Errorf("expected trigger line, got %q", text)
	}
}

func TestHandleDebugCycleShowsBoundaries(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	setupHandlerDeps(t, b)

	HandleDebugCycle(context.Background(), b, newGroupUpdate("/debug_cycle", adminUserID))

	text := client.lastMessageText(t)
	if !strings.Contains(text, "Cycle ") {
		t.Errorf("expected cycle line, got %q", text)
	}
	if !strings.Contains(text, "Current week:") {
		t.Errorf("expected week line, got %q", text)
	}
}

func TestHandleDebugWeeklySendsReport(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	setupHandlerDeps(t, b)

	if err := db.DB.Create(&db.User{UserID: 1, FirstName: "Alex"}).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	HandleDebugWeekly(context.Background(), b, newGroupUpdate("/debug_weekly", adminUserID))

	var found bool
	for i := range client.requests {
		if strings.Contains(client.textOfRequest(t, i), "Leaderboard") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected a weekly report message to be sent")
	}
}
