package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/cycle"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/scoring"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func guardGroupCommand(ctx context.Context, b *telegram.Bot, update *models.Update, handlerName string) bool {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in " + handlerName)
		return false
	}
	if !fromGroup(update) {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "This bot only works in the challenge group.",
		})
		return false
	}
	return ensureSender(ctx, b, update)
}

func HandleLeaderboard(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardGroupCommand(ctx, b, update, "HandleLeaderboard") {
		return
	}

	now := time.Now().In(config.Location())
	cycleNum, err := cycle.ResolveActive(now)
	if err != nil {
		if errors.Is(err, cycle.ErrChallengeOver) {
			b.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "The challenge has ended. Thanks for playing! 🏁",
			})
			return
		}
		logger.Error("failed to resolve active cycle", "error", err)
		return
	}

	c, err := cycle.Get(cycleNum)
	if err != nil {
		logger.Error("failed to load cycle", "cycle", cycleNum, "error", err)
		return
	}
	standings, err := db.CycleStandings(cycleNum)
	if err != nil {
		logger.Error("failed to load standings", "cycle", cycleNum, "error", err)
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Failed to build the leaderboard. Please try again later.",
		})
		return
	}

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   scoring.LeaderboardText(c, standings),
	})
}

func HandlePot(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardGroupCommand(ctx, b, update, "HandlePot") {
		return
	}

	now := time.Now().In(config.Location())
	cycleNum, err := cycle.ResolveActive(now)
	if err != nil {
		if errors.Is(err, cycle.ErrChallengeOver) {
			b.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "The challenge has ended. Thanks for playing! 🏁",
			})
			return
		}
		logger.Error("failed to resolve active cycle", "error", err)
		return
	}

	total, err := db.PotTotal(cycleNum)
	if err != nil {
		logger.Error("failed to sum pot", "cycle", cycleNum, "error", err)
		return
	}
	contributions, err := db.PotByUser(cycleNum)
	if err != nil {
		logger.Error("failed to load pot contributions", "cycle", cycleNum, "error", err)
		return
	}

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   scoring.PotReportText(cycleNum, total, contributions),
	})
}

func HandleMySchedules(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardGroupCommand(ctx, b, update, "HandleMySchedules") {
		return
	}

	var rows []db.Schedule
	if err := db.DB.Where("user_id = ?", update.Message.From.ID).Order("id ASC").Find(&rows).Error; err != nil {
		logger.Error("failed to load schedules", "user_id", update.Message.From.ID, "error", err)
		return
	}
	if len(rows) == 0 {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "You have no focus slots yet. Add one with /setschedule <day> <HH:MM>.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("Your focus slots:\n")
	for i, row := range rows {
		fmt.Fprintf(&sb, "%d. %s at %s\n", i+1, row.DayOfWeek, row.TimeOfDay)
	}
	sb.WriteString("\nRemove one with /removeschedule <number>.")

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}

func HandleUsers(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardGroupCommand(ctx, b, update, "HandleUsers") {
		return
	}

	var users []db.User
	if err := db.DB.Order("user_id ASC").Find(&users).Error; err != nil {
		logger.Error("failed to load users", "error", err)
		return
	}
	if len(users) == 0 {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Nobody has joined yet.",
		})
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Participants (%d):\n", len(users))
	for _, user := range users {
		var slots int64
		db.DB.Model(&db.Schedule{}).Where("user_id = ?", user.UserID).Count(&slots)
		fmt.Fprintf(&sb, "• %s — %d slot(s)\n", user.FirstName, slots)
	}

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}
