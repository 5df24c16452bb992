package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/internal/testutil"
	"github.com/dmoreira/tg-focus-coach/pkg/trigger"
	"github.com/dmoreira/tg-focus-coach/pkg/window"
)

type nullSender struct{}

func (nullSender) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	return 1, nil
}

func TestParseDay(t *testing.T) {
	cases := []struct {
		input string
		want  time.Weekday
		ok    bool
	}{
		{"monday", time.Monday, true},
		{"Friday", time.Friday, true},
		{"  SUNDAY ", time.Sunday, true},
		{"someday", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDay(tc.input)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseDay(%q) unexpected error: %v", tc.input, err)
			} else if got != tc.want {
				t.Errorf("ParseDay(%q) = %v, want %v", tc.input, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrMalformedSchedule) {
			t.Errorf("ParseDay(%q) error = %v, want ErrMalformedSchedule", tc.input, err)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	hour, minute, err := ParseTimeOfDay("18:30")
	if err != nil || hour != 18 || minute != 30 {
		t.Fatalf("ParseTimeOfDay(18:30) = %d:%d, %v", hour, minute, err)
	}

	for _, bad := range []string{"25:00", "12:60", "noon", "9", "09:3x", ""} {
		if _, _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrMalformedSchedule) {
			t.Errorf("ParseTimeOfDay(%q) error = %v, want ErrMalformedSchedule", bad, err)
		}
	}
}

func TestReminderTimeWrapsWithinDay(t *testing.T) {
	hour, minute := ReminderTime(18, 30)
	if hour != 18 || minute != 15 {
		t.Errorf("ReminderTime(18:30) = %02d:%02d, want 18:15", hour, minute)
	}

	hour, minute = ReminderTime(0, 5)
	if hour != 23 || minute != 50 {
		t.Errorf("ReminderTime(00:05) = %02d:%02d, want 23:50", hour, minute)
	}
}

func TestTriggerIDs(t *testing.T) {
	reminderID, promptID := TriggerIDs(7)
	if reminderID != "reminder_7" || promptID != "prompt_7" {
		t.Errorf("TriggerIDs(7) = %q, %q", reminderID, promptID)
	}
}

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	sched := trigger.New(config.Location())
	t.Cleanup(sched.Stop)
	return Deps{
		Scheduler: sched,
		Sender:    nullSender{},
		Tracker:   window.NewTracker(time.Now),
		ChatID:    -100900,
	}
}

func TestApplyRegistersPairAndPersistsIDs(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	deps := newTestDeps(t)

	if err := db.DB.Create(&db.User{UserID: 1, FirstName: "Alex"}).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	row := db.Schedule{UserID: 1, DayOfWeek: "friday", TimeOfDay: "18:30"}
	if err := db.DB.Create(&row).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	if err := Apply(deps, &row); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	infos := deps.Scheduler.ListActive()
	if len(infos) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(infos))
	}
	specs := make(map[string]string, len(infos))
	for _, info := range infos {
		specs[info.ID] = info.Spec
	}
	wantReminder, wantPrompt := TriggerIDs(row.ID)
	if specs[wantPrompt] != "0 30 18 * * 5" {
		t.Errorf("prompt spec = %q, want 0 30 18 * * 5", specs[wantPrompt])
	}
	if specs[wantReminder] != "0 15 18 * * 5" {
		t.Errorf("reminder spec = %q, want 0 15 18 * * 5", specs[wantReminder])
	}

	var stored db.Schedule
	if err := db.DB.First(&stored, row.ID).Error; err != nil {
		t.Fatalf("failed to reload schedule: %v", err)
	}
	if stored.ReminderTriggerID != wantReminder || stored.PromptTriggerID != wantPrompt {
		t.Errorf("stored trigger ids = %q, %q", stored.ReminderTriggerID, stored.PromptTriggerID)
	}
}

func TestApplyMalformedRowLeavesNoTriggers(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	deps := newTestDeps(t)

	row := db.Schedule{UserID: 1, DayOfWeek: "friday", TimeOfDay: "half past six"}
	if err := db.DB.Create(&row).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	if err := Apply(deps, &row); !errors.Is(err, ErrMalformedSchedule) {
		t.Fatalf("Apply error = %v, want ErrMalformedSchedule", err)
	}
	if got := len(deps.Scheduler.ListActive()); got != 0 {
		t.Errorf("expected no triggers after malformed apply, got %d", got)
	}
}

func TestApplyPersistFailureRollsBackTriggers(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	deps := newTestDeps(t)

	row := db.Schedule{UserID: 1, DayOfWeek: "friday", TimeOfDay: "18:30"}
	if err := db.DB.Create(&row).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	// Closing the database makes the trigger-id persist step fail after
	// both triggers were registered.
	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	if err := Apply(deps, &row); err == nil {
		t.Fatal("expected Apply to fail once persistence is unavailable")
	}
	if got := len(deps.Scheduler.ListActive()); got != 0 {
		t.Errorf("expected no triggers after failed apply, got %d", got)
	}
}

func TestRemoveDropsTriggersAndRow(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	deps := newTestDeps(t)

	row := db.Schedule{UserID: 1, DayOfWeek: "monday", TimeOfDay: "07:00"}
	if err := db.DB.Create(&row).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}
	if err := Apply(deps, &row); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if err := Remove(deps, &row); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got := len(deps.Scheduler.ListActive()); got != 0 {
		t.Errorf("expected no triggers after remove, got %d", got)
	}
	var count int64
	db.DB.Model(&db.Schedule{}).Count(&count)
	if count != 0 {
		t.Errorf("expected schedule row deleted, %d rows remain", count)
	}
}

func TestSyncAllSkipsMalformedAndRegistersGlobals(t *testing.T) {
	testutil.SetupTestDB(t)
	testutil.SetupChallengeConfig(t)
	deps := newTestDeps(t)

	good := db.Schedule{UserID: 1, DayOfWeek: "tuesday", TimeOfDay: "09:00"}
	bad := db.Schedule{UserID: 2, DayOfWeek: "blursday", TimeOfDay: "09:00"}
	if err := db.DB.Create(&good).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}
	if err := db.DB.Create(&bad).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	if err := SyncAll(deps); err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}

	ids := make(map[string]bool)
	for _, info := range deps.Scheduler.ListActive() {
		ids[info.ID] = true
	}
	reminderID, promptID := TriggerIDs(good.ID)
	for _, want := range []string{
		reminderID,
		promptID,
		"weekly_report_-100900",
		"daily_pote_report_-100900",
		"cycle_end_-100900",
	} {
		if !ids[want] {
			t.Errorf("missing trigger %q after SyncAll; have %v", want, ids)
		}
	}
	if len(ids) != 5 {
		t.Errorf("expected 5 triggers, got %d: %v", len(ids), ids)
	}

	// Startup sync resolves the active cycle so the first fire finds it.
	var count int64
	db.DB.Model(&db.Cycle{}).Where("active = ?", true).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 active cycle after SyncAll, got %d", count)
	}
}
