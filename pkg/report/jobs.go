package report

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/cycle"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/scoring"
)

// Sender delivers a notice to a chat and reports the id of the sent
// message. Debt requests keep that id so a later reply can be matched
// back to the debt.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
}

// Weekly computes this week's points and debts for every participant,
// posts the leaderboard, then posts one payment request per indebted
// user and records the Debt rows. Safe to run manually: existing debt
// rows for the same (user, week, cycle) are not duplicated.
func Weekly(ctx context.Context, sender Sender, chatID int64, now time.Time) error {
	cycleNum, err := cycle.ResolveActive(now)
	if errors.Is(err, cycle.ErrChallengeOver) {
		logger.Info("weekly report skipped, challenge inactive")
		return nil
	}
	if err != nil {
		return err
	}
	weekNum := cycle.WeekOf(now)

	var users []db.User
	if err := db.DB.Order("user_id ASC").Find(&users).Error; err != nil {
		return err
	}
	if len(users) == 0 {
		logger.Info("weekly report skipped, no participants")
		return nil
	}

	entries := make([]scoring.WeeklyEntry, 0, len(users))
	for _, user := range users {
		points, err := db.SumPoints(user.UserID, weekNum, cycleNum)
		if err != nil {
			return err
		}
		entries = append(entries, scoring.WeeklyEntry{
			UserID: user.UserID,
			Name:   user.FirstName,
			Points: points,
			Debt:   scoring.WeeklyDebt(points),
		})
	}
	// Users come in ascending id order; the stable sort keeps that as
	// the tie-break.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	if _, err := sender.SendMessage(ctx, chatID, scoring.WeeklyReportText(weekNum, entries)); err != nil {
		logger.Error("failed to post weekly report", "error", err)
		return err
	}

	for _, entry := range entries {
		if entry.Debt <= 0 {
			continue
		}
		var existing int64
		if err := db.DB.Model(&db.Debt{}).
			Where("user_id = ? AND week_num = ? AND cycle_num = ?", entry.UserID, weekNum, cycleNum).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			logger.Info("debt already recorded for this week", "user_id", entry.UserID, "week", weekNum, "cycle", cycleNum)
			continue
		}

		msgID, err := sender.SendMessage(ctx, chatID, scoring.DebtRequestText(entry.Name, entry.Debt))
		if err != nil {
			logger.Error("failed to post debt request", "user_id", entry.UserID, "error", err)
			continue
		}
		debt := db.Debt{
			UserID:           entry.UserID,
			WeekNum:          weekNum,
			CycleNum:         cycleNum,
			Amount:           entry.Debt,
			RequestMessageID: msgID,
		}
		if err := db.DB.Create(&debt).Error; err != nil {
			logger.Error("failed to record debt", "user_id", entry.UserID, "error", err)
		}
	}
	return nil
}

// DailyPot posts the pot total and per-user contributions for the
// active cycle. Without an active cycle it silently no-ops.
func DailyPot(ctx context.Context, sender Sender, chatID int64, now time.Time) error {
	cycleNum, err := cycle.ResolveActive(now)
	if errors.Is(err, cycle.ErrChallengeOver) {
		return nil
	}
	if err != nil {
		return err
	}

	total, err := db.PotTotal(cycleNum)
	if err != nil {
		return err
	}
	contributions, err := db.PotByUser(cycleNum)
	if err != nil {
		return err
	}

	_, err = sender.SendMessage(ctx, chatID, scoring.PotReportText(cycleNum, total, contributions))
	return err
}

// CycleClose announces the winner and pot, then closes the cycle,
// which lazily creates its successor.
func CycleClose(ctx context.Context, sender Sender, chatID int64, now time.Time) error {
	cycleNum, err := cycle.ResolveActive(now)
	if errors.Is(err, cycle.ErrChallengeOver) {
		logger.Info("cycle close skipped, challenge inactive")
		return nil
	}
	if err != nil {
		return err
	}

	winner, err := db.TopScorer(cycleNum)
	if err != nil {
		return err
	}
	total, err := db.PotTotal(cycleNum)
	if err != nil {
		return err
	}

	if _, err := sender.SendMessage(ctx, chatID, scoring.CycleCloseSummaryText(cycleNum, winner, total)); err != nil {
		logger.Error("failed to post cycle close summary", "error", err)
	}

	return cycle.Close(cycleNum)
}
