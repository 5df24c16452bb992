package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/schedules"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const setScheduleUsage = "Usage: /setschedule <day> <HH:MM>, e.g. /setschedule friday 18:30"

// HandleSetSchedule creates a weekly focus slot and registers its
// reminder and prompt triggers immediately.
func HandleSetSchedule(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardGroupCommand(ctx, b, update, "HandleSetSchedule") {
		return
	}

	args := strings.Fields(update.Message.Text)
	if len(args) != 3 {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   setScheduleUsage,
		})
		return
	}

	day, err := schedules.ParseDay(args[1])
	if err != nil {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("I don't know the day %q. %s", args[1], setScheduleUsage),
		})
		return
	}
	hour, minute, err := schedules.ParseTimeOfDay(args[2])
	if err != nil {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("I can't read the time %q. %s", args[2], setScheduleUsage),
		})
		return
	}

	row := db.Schedule{
		UserID:    update.Message.From.ID,
		DayOfWeek: schedules.FormatDay(day),
		TimeOfDay: fmt.Sprintf("%02d:%02d", hour, minute),
	}
	if err := db.DB.Create(&row).Error; err != nil {
		logger.Error("failed to create schedule", "user_id", row.UserID, "error", err)
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Failed to save the slot. Please try again later.",
		})
		return
	}
	if err := schedules.Apply(scheduleDeps(), &row); err != nil {
		logger.Error("failed to register schedule triggers", "schedule_id", row.ID, "error", err)
		db.DB.Delete(&row)
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Failed to save the slot. Please try again later.",
		})
		return
	}

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("✅ Focus slot saved: %s at %s. Reminder comes 15 minutes before.",
			row.DayOfWeek, row.TimeOfDay),
	})
}

// HandleRemoveSchedule deletes the caller's nth slot as listed by
// /myschedules.
func HandleRemoveSchedule(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardGroupCommand(ctx, b, update, "HandleRemoveSchedule") {
		return
	}

	args := strings.Fields(update.Message.Text)
	if len(args) != 2 {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Usage: /removeschedule <number> (see /myschedules)",
		})
		return
	}
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 1 {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Usage: /removeschedule <number> (see /myschedules)",
		})
		return
	}

	var rows []db.Schedule
	if err := db.DB.Where("user_id = ?", update.Message.From.ID).Order("id ASC").Find(&rows).Error; err != nil {
		logger.Error("failed to load schedules", "user_id", update.Message.From.ID, "error", err)
		return
	}
	if index > len(rows) {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   fmt.Sprintf("You only have %d slot(s).", len(rows)),
		})
		return
	}

	row := rows[index-1]
	if err := schedules.Remove(scheduleDeps(), &row); err != nil {
		if errors.Is(err, schedules.ErrMalformedSchedule) {
			logger.Error("removed malformed schedule", "schedule_id", row.ID)
		} else {
			logger.Error("failed to remove schedule", "schedule_id", row.ID, "error", err)
			b.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   "Failed to remove the slot. Please try again later.",
			})
			return
		}
	}

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   fmt.Sprintf("🗑 Removed slot %s at %s.", row.DayOfWeek, row.TimeOfDay),
	})
}
