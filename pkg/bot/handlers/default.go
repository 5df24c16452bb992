package handlers

import (
	"context"

	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// DefaultHandler catches updates without a registered command route.
// Photos are the submission currency, so they get dispatched; anything
// else is ignored.
func DefaultHandler(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		logger.Debug("ignoring non-message update in DefaultHandler")
		return
	}
	if len(update.Message.Photo) > 0 {
		HandleSubmission(ctx, b, update)
	}
}
