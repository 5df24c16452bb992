package cycle

import (
	"errors"
	"sync"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"gorm.io/gorm"
)

// ErrChallengeOver signals that now is past the configured final date.
// Callers treat it as "challenge inactive", not as a failure.
var ErrChallengeOver = errors.New("challenge period is over")

// WeekOf returns the ISO week number of now in the operating timezone.
func WeekOf(now time.Time) int {
	_, week := now.In(config.Location()).ISOWeek()
	return week
}

// resolveMu serializes the miss path below. Without it two goroutines
// (a cron fire and a message handler) could both see no active cycle
// and both insert one.
var resolveMu sync.Mutex

// ResolveActive returns the cycle covering now, creating it when
// missing. Cycle boundaries are a pure function of the epoch: blocks
// start at the epoch and each one ends on the last calendar day of the
// month reached by adding 60 days, so repeated and concurrent calls
// converge on the same row.
func ResolveActive(now time.Time) (uint, error) {
	resolveMu.Lock()
	defer resolveMu.Unlock()

	day := DayOf(now)

	var current db.Cycle
	err := db.DB.
		Where("active = ? AND start_date <= ? AND end_date >= ?", true, day, day).
		First(&current).Error
	if err == nil {
		return current.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	// Only one cycle may be active; clear any stale ones before
	// inserting the block that covers today.
	if err := db.DB.Model(&db.Cycle{}).Where("active = ?", true).Update("active", false).Error; err != nil {
		return 0, err
	}

	start := DayOf(config.Epoch())
	for {
		end := lastDayOfMonth(start.AddDate(0, 0, 60))
		if !day.Before(start) && !day.After(end) {
			created := db.Cycle{StartDate: start, EndDate: end, Active: true}
			if err := db.DB.Create(&created).Error; err != nil {
				return 0, err
			}
			logger.Info("created new cycle", "cycle", created.ID,
				"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))
			return created.ID, nil
		}
		start = end.AddDate(0, 0, 1)
		if start.After(config.FinalDate()) {
			logger.Info("challenge period has ended", "final_date", config.FinalDate().Format("2006-01-02"))
			return 0, ErrChallengeOver
		}
	}
}

// Close assigns the winner, deactivates the cycle and lazily creates
// its successor. Resolution runs from the day after the closed range so
// the finished block is never re-created.
func Close(cycleNum uint) error {
	var closing db.Cycle
	if err := db.DB.First(&closing, cycleNum).Error; err != nil {
		return err
	}

	winner, err := db.TopScorer(cycleNum)
	if err != nil {
		return err
	}

	updates := map[string]any{"active": false}
	if winner != nil {
		updates["winner_user_id"] = winner.UserID
	}
	if err := db.DB.Model(&db.Cycle{}).Where("id = ?", cycleNum).Updates(updates).Error; err != nil {
		return err
	}

	next := closing.EndDate.AddDate(0, 0, 1)
	if _, err := ResolveActive(next); err != nil {
		if errors.Is(err, ErrChallengeOver) {
			return nil
		}
		return err
	}
	return nil
}

// Get loads a cycle row by number.
func Get(cycleNum uint) (*db.Cycle, error) {
	var c db.Cycle
	if err := db.DB.First(&c, cycleNum).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// DayOf truncates now to midnight in the operating timezone.
func DayOf(now time.Time) time.Time {
	local := now.In(config.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

func lastDayOfMonth(day time.Time) time.Time {
	firstOfMonth := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	return firstOfMonth.AddDate(0, 1, -1)
}
