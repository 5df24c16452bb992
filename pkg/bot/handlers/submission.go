package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/cycle"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/scoring"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleSubmission scores group photos. A photo replying to a debt
// request settles that debt instead of counting as a submission.
func HandleSubmission(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil || update.Message.Chat.ID == 0 {
		logger.Error("invalid update in HandleSubmission")
		return
	}
	if !fromGroup(update) || len(update.Message.Photo) == 0 {
		return
	}
	if !ensureSender(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	now := time.Now().In(config.Location())

	if reply := update.Message.ReplyToMessage; reply != nil {
		settlement, err := scoring.MatchPayment(chatID, userID, reply.ID, now)
		if err == nil {
			b.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: chatID,
				Text:   scoring.PaymentConfirmedText(settlement),
			})
			return
		}
		if !errors.Is(err, scoring.ErrNoMatchingDebt) {
			logger.Error("failed to match payment", "user_id", userID, "error", err)
			return
		}
	}

	cycleNum, err := cycle.ResolveActive(now)
	if err != nil {
		if errors.Is(err, cycle.ErrChallengeOver) {
			b.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: chatID,
				Text:   "The challenge has ended. Thanks for playing! 🏁",
			})
			return
		}
		logger.Error("failed to resolve active cycle", "error", err)
		return
	}

	award, err := scoring.AcceptSubmission(current.Tracker, chatID, userID, cycle.WeekOf(now), cycleNum, now)
	name := displayName(userID)
	if err != nil {
		if errors.Is(err, scoring.ErrCapExceeded) {
			b.SendMessage(ctx, &telegram.SendMessageParams{
				ChatID: chatID,
				Text:   scoring.CapReachedText(name),
			})
			return
		}
		logger.Error("failed to record submission", "user_id", userID, "error", err)
		return
	}

	b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID: chatID,
		Text:   scoring.SubmissionReceivedText(name, award),
	})
}
