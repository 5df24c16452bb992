package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/cycle"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/report"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func guardAdminCommand(ctx context.Context, b *telegram.Bot, update *models.Update, handlerName string) bool {
	if !guardGroupCommand(ctx, b, update, handlerName) {
		return false
	}
	if !isAdmin(update.Message.From.ID) {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Only admins can run debug commands.",
		})
		return false
	}
	return true
}

// HandleDebugWeekly fires the weekly report job on demand.
func HandleDebugWeekly(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardAdminCommand(ctx, b, update, "HandleDebugWeekly") {
		return
	}
	now := time.Now().In(config.Location())
	if err := report.Weekly(ctx, current.Sender, update.Message.Chat.ID, now); err != nil {
		logger.Error("manual weekly report failed", "error", err)
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Weekly report failed. Check the logs.",
		})
	}
}

// HandleDebugCycleEnd closes the active cycle on demand.
func HandleDebugCycleEnd(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardAdminCommand(ctx, b, update, "HandleDebugCycleEnd") {
		return
	}
	now := time.Now().In(config.Location())
	if err := report.CycleClose(ctx, current.Sender, update.Message.Chat.ID, now); err != nil {
		logger.Error("manual cycle close failed", "error", err)
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Cycle close failed. Check the logs.",
		})
	}
}

// HandleDebugJobs lists the registered triggers and their next fires.
func HandleDebugJobs(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardAdminCommand(ctx, b, update, "HandleDebugJobs") {
		return
	}

	infos := current.Scheduler.ListActive()
	if len(infos) == 0 {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "No triggers registered.",
		})
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Registered triggers (%d):\n", len(infos))
	for _, info := range infos {
		next := "unscheduled"
		if !info.NextFire.IsZero() {
			next = info.NextFire.In(config.Location()).Format("Mon 2006-01-02 15:04")
		}
		fmt.Fprintf(&sb, "• %s [%s] → %s\n", info.ID, info.HandlerName, next)
	}

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}

// HandleDebugCycle shows the active cycle boundaries and current week.
func HandleDebugCycle(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardAdminCommand(ctx, b, update, "HandleDebugCycle") {
		return
	}

	now := time.Now().In(config.Location())
	cycleNum, err := cycle.ResolveActive(now)
	if err != nil {
		if errors.Is(err, cycle.ErrChallengeOver) {
			b.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "No active cycle: the challenge has ended.",
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

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("Cycle %d: %s to %s\nCurrent week: %d",
			c.ID, c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"),
			cycle.WeekOf(now)),
	})
}
