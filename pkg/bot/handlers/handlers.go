package handlers

import (
	"context"
	"fmt"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/report"
	"github.com/dmoreira/tg-focus-coach/pkg/schedules"
	"github.com/dmoreira/tg-focus-coach/pkg/trigger"
	"github.com/dmoreira/tg-focus-coach/pkg/window"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Deps is injected once at startup; handlers read it on every update.
type Deps struct {
	Scheduler *trigger.Scheduler
	Tracker   *window.Tracker
	Sender    report.Sender
}

var current Deps

func Configure(d Deps) {
	current = d
}

func scheduleDeps() schedules.Deps {
	return schedules.Deps{
		Scheduler: current.Scheduler,
		Sender:    current.Sender,
		Tracker:   current.Tracker,
		ChatID:    config.AppConfig.Challenge.GroupChatID,
	}
}

// botSender adapts the Telegram client to the report.Sender interface
// so scheduled jobs and handlers share one delivery path.
type botSender struct {
	b *telegram.Bot
}

func NewBotSender(b *telegram.Bot) report.Sender {
	return botSender{b: b}
}

func (s botSender) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	msg, err := s.b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// fromGroup reports whether the update came from the challenge group.
// The bot ignores every other chat.
func fromGroup(update *models.Update) bool {
	return update.Message.Chat.ID == config.AppConfig.Challenge.GroupChatID
}

func isAdmin(userID int64) bool {
	return config.IsAdmin(userID)
}

func ensureSender(ctx context.Context, b *telegram.Bot, update *models.Update) bool {
	from := update.Message.From
	if err := db.EnsureUser(from.ID, from.Username, from.FirstName); err != nil {
		logger.Error("failed to upsert user", "user_id", from.ID, "error", err)
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Something went wrong. Please try again later.",
		})
		return false
	}
	return true
}

func displayName(userID int64) string {
	var user db.User
	if err := db.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		return fmt.Sprintf("user %d", userID)
	}
	return user.FirstName
}
