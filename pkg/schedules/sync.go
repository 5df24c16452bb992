package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/cycle"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/report"
	"github.com/dmoreira/tg-focus-coach/pkg/scoring"
	"github.com/dmoreira/tg-focus-coach/pkg/trigger"
	"github.com/dmoreira/tg-focus-coach/pkg/window"
	"gorm.io/gorm"
)

// Deps bundles what schedule triggers need at fire time.
type Deps struct {
	Scheduler *trigger.Scheduler
	Sender    report.Sender
	Tracker   *window.Tracker
	ChatID    int64
}

// Apply registers the reminder and prompt triggers for one schedule row
// and persists the derived trigger ids on it. Re-applying the same row
// replaces the previous pair in place.
func Apply(d Deps, sched *db.Schedule) error {
	day, err := ParseDay(sched.DayOfWeek)
	if err != nil {
		return err
	}
	hour, minute, err := ParseTimeOfDay(sched.TimeOfDay)
	if err != nil {
		return err
	}

	reminderID, promptID := TriggerIDs(sched.ID)
	remHour, remMinute := ReminderTime(hour, minute)

	userID := sched.UserID
	chatID := d.ChatID
	sender := d.Sender
	tracker := d.Tracker

	err = d.Scheduler.RegisterRecurring(reminderID, trigger.Weekly(day, remHour, remMinute), "reminder", func() {
		name := displayName(userID)
		text := fmt.Sprintf("⏰ %s, your focus session starts in 15 minutes. Get ready!", name)
		if _, err := sender.SendMessage(context.Background(), chatID, text); err != nil {
			logger.Error("failed to send reminder", "schedule_id", sched.ID, "error", err)
		}
	})
	if err != nil {
		return err
	}

	err = d.Scheduler.RegisterRecurring(promptID, trigger.Weekly(day, hour, minute), "prompt", func() {
		now := time.Now().In(config.Location())
		tracker.Open(chatID, userID, now)
		name := displayName(userID)
		text := fmt.Sprintf("📸 %s, it's focus time! Send your photo within the next hour for %d points.",
			name, scoring.WindowPoints)
		if _, err := sender.SendMessage(context.Background(), chatID, text); err != nil {
			logger.Error("failed to send prompt", "schedule_id", sched.ID, "error", err)
		}
	})
	if err != nil {
		d.Scheduler.Remove(reminderID)
		return err
	}

	sched.ReminderTriggerID = reminderID
	sched.PromptTriggerID = promptID
	if err := db.DB.Model(sched).Updates(map[string]interface{}{
		"reminder_trigger_id": reminderID,
		"prompt_trigger_id":   promptID,
	}).Error; err != nil {
		// Roll the registrations back so an orphaned slot never fires.
		d.Scheduler.Remove(reminderID)
		d.Scheduler.Remove(promptID)
		return fmt.Errorf("failed to persist trigger ids for schedule %d: %w", sched.ID, err)
	}
	return nil
}

// Remove drops the trigger pair of a schedule row and deletes the row.
func Remove(d Deps, sched *db.Schedule) error {
	reminderID, promptID := TriggerIDs(sched.ID)
	d.Scheduler.Remove(reminderID)
	d.Scheduler.Remove(promptID)
	if err := db.DB.Delete(sched).Error; err != nil {
		return fmt.Errorf("failed to delete schedule %d: %w", sched.ID, err)
	}
	return nil
}

// SyncAll rebuilds the full trigger set on startup: the three group-wide
// jobs plus one reminder/prompt pair per stored schedule. Malformed
// rows are logged and skipped. It also resolves the active cycle so the
// first fire never races cycle creation.
func SyncAll(d Deps) error {
	if _, err := cycle.ResolveActive(time.Now()); err != nil && !errors.Is(err, cycle.ErrChallengeOver) {
		return err
	}

	registerGlobalJobs(d)

	var rows []db.Schedule
	if err := db.DB.Order("id ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}
	for i := range rows {
		if err := Apply(d, &rows[i]); err != nil {
			if errors.Is(err, ErrMalformedSchedule) {
				logger.Error("skipping malformed schedule", "schedule_id", rows[i].ID, "error", err)
				continue
			}
			return err
		}
	}
	logger.Info("schedule triggers synced", "count", len(rows))
	return nil
}

func registerGlobalJobs(d Deps) {
	chatID := d.ChatID
	sender := d.Sender
	loc := config.Location()

	weeklyID := fmt.Sprintf("weekly_report_%d", chatID)
	_ = d.Scheduler.RegisterRecurring(weeklyID, trigger.Weekly(time.Sunday, 23, 0), "weekly_report", func() {
		if err := report.Weekly(context.Background(), sender, chatID, time.Now().In(loc)); err != nil {
			logger.Error("weekly report failed", "error", err)
		}
	})

	potID := fmt.Sprintf("daily_pote_report_%d", chatID)
	_ = d.Scheduler.RegisterRecurring(potID, trigger.Daily(22, 0), "daily_pot_report", func() {
		if err := report.DailyPot(context.Background(), sender, chatID, time.Now().In(loc)); err != nil {
			logger.Error("daily pot report failed", "error", err)
		}
	})

	// The cycle boundary lands on the last day of a month, which cron
	// specs cannot express directly. The job fires every evening and
	// only acts when today matches the active cycle's end date.
	endID := fmt.Sprintf("cycle_end_%d", chatID)
	_ = d.Scheduler.RegisterRecurring(endID, trigger.Daily(23, 30), "cycle_end", func() {
		now := time.Now().In(loc)
		if !cycleEndsToday(now) {
			return
		}
		if err := report.CycleClose(context.Background(), sender, chatID, now); err != nil {
			logger.Error("cycle close failed", "error", err)
		}
	})
}

func cycleEndsToday(now time.Time) bool {
	var active db.Cycle
	err := db.DB.Where("active = ?", true).First(&active).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to load active cycle", "error", err)
		}
		return false
	}
	return cycle.DayOf(now).Equal(cycle.DayOf(active.EndDate))
}

func displayName(userID int64) string {
	var user db.User
	if err := db.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		return fmt.Sprintf("user %d", userID)
	}
	return user.FirstName
}
