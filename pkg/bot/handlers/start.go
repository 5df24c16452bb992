package handlers

import (
	"context"

	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const welcomeText = `Welcome to the focus challenge! 🎯

How it works:
• Set your weekly focus slots with /setschedule <day> <HH:MM>
• You get a reminder 15 minutes before each slot and a photo prompt at slot time
• Send a photo within an hour of the prompt for 5 points; any other photo earns 3
• Up to 2 scored photos per week; every point shaves R$ 5.00 off your weekly stake of R$ 50.00
• Debts go to the pot; the cycle winner takes it all

Commands: /leaderboard, /pot, /myschedules, /removeschedule, /users`

func HandleStart(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleStart")
		return
	}
	if !fromGroup(update) {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "This bot only works in the challenge group.",
		})
		return
	}
	if !ensureSender(ctx, b, update) {
		return
	}

	if _, err := b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcomeText,
	}); err != nil {
		logger.Error("failed to send welcome message", "user_id", update.Message.From.ID, "error", err)
	}
}
