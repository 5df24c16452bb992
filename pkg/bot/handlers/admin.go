package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/dmoreira/tg-focus-coach/pkg/ui"
	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const submissionsPageSize = 5

// HandleSubmissions opens the admin browser over recorded submissions,
// newest first, with per-row delete buttons.
func HandleSubmissions(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if !guardGroupCommand(ctx, b, update, "HandleSubmissions") {
		return
	}
	if !isAdmin(update.Message.From.ID) {
		b.SendMessage(ctx, &telegram.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Only admins can browse submissions.",
		})
		return
	}

	text, keyboard, err := renderSubmissionsPage(0)
	if err != nil {
		logger.Error("failed to render submissions page", "error", err)
		return
	}
	if _, err := b.SendMessage(ctx, &telegram.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send submissions page", "error", err)
	}
}

// HandleSubmissionsCallback drives pagination and the two-tap delete
// flow. Deleting a submission never recomputes past reports.
func HandleSubmissionsCallback(ctx context.Context, b *telegram.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleSubmissionsCallback")
		return
	}

	callbackID := update.CallbackQuery.ID
	answerCallback := func(text string) {
		if callbackID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &telegram.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer submissions callback", "error", err)
		}
	}

	if !isAdmin(update.CallbackQuery.From.ID) {
		answerCallback("Admins only")
		return
	}

	cb, err := ui.Decode(update.CallbackQuery.Data)
	if err != nil {
		answerCallback("Not active")
		return
	}

	message := update.CallbackQuery.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil {
		answerCallback("Message missing")
		return
	}
	msg := message.Message

	switch cb.Action {
	case ui.ActionDelete:
		var sub db.Submission
		if err := db.DB.First(&sub, cb.SubmissionID).Error; err != nil {
			answerCallback("Already gone")
			redrawSubmissionsPage(ctx, b, msg, cb.Page)
			return
		}
		text := fmt.Sprintf("Delete submission #%d by %s (%d points)?",
			sub.ID, displayName(sub.UserID), sub.PointsAwarded)
		keyboard := &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "✅ Confirm", CallbackData: ui.ConfirmData(sub.ID, cb.Page)},
				{Text: "↩ Cancel", CallbackData: ui.CancelData(cb.Page)},
			}},
		}
		if _, err := b.EditMessageText(ctx, &telegram.EditMessageTextParams{
			ChatID:      msg.Chat.ID,
			MessageID:   msg.ID,
			Text:        text,
			ReplyMarkup: keyboard,
		}); err != nil {
			logger.Error("failed to show delete confirmation", "error", err)
		}
		answerCallback("")

	case ui.ActionConfirm:
		if err := db.DB.Delete(&db.Submission{}, cb.SubmissionID).Error; err != nil {
			logger.Error("failed to delete submission", "submission_id", cb.SubmissionID, "error", err)
			answerCallback("Delete failed")
			return
		}
		answerCallback("Deleted")
		redrawSubmissionsPage(ctx, b, msg, cb.Page)

	case ui.ActionCancel, ui.ActionPage:
		answerCallback("")
		redrawSubmissionsPage(ctx, b, msg, cb.Page)
	}
}

func redrawSubmissionsPage(ctx context.Context, b *telegram.Bot, msg *models.Message, page int) {
	text, keyboard, err := renderSubmissionsPage(page)
	if err != nil {
		logger.Error("failed to render submissions page", "error", err)
		return
	}
	if _, err := b.EditMessageText(ctx, &telegram.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to redraw submissions page", "error", err)
	}
}

func renderSubmissionsPage(page int) (string, *models.InlineKeyboardMarkup, error) {
	var total int64
	if err := db.DB.Model(&db.Submission{}).Count(&total).Error; err != nil {
		return "", nil, err
	}
	if total == 0 {
		return "No submissions recorded yet.", &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{},
		}, nil
	}

	lastPage := int((total - 1) / submissionsPageSize)
	if page > lastPage {
		page = lastPage
	}

	var subs []db.Submission
	if err := db.DB.Order("id DESC").
		Limit(submissionsPageSize).
		Offset(page * submissionsPageSize).
		Find(&subs).Error; err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Submissions (page %d of %d):\n", page+1, lastPage+1)
	rows := make([][]models.InlineKeyboardButton, 0, len(subs)+1)
	for _, sub := range subs {
		fmt.Fprintf(&sb, "#%d %s — %d points, week %d, cycle %d, %s\n",
			sub.ID, displayName(sub.UserID), sub.PointsAwarded,
			sub.WeekNum, sub.CycleNum, sub.SubmittedAt.Format("2006-01-02 15:04"))
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("❌ Delete #%d", sub.ID),
			CallbackData: ui.DeleteData(sub.ID, page),
		}})
	}

	var nav []models.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "⬅ Prev",
			CallbackData: ui.PageData(page - 1),
		})
	}
	if page < lastPage {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "Next ➡",
			CallbackData: ui.PageData(page + 1),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return sb.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}, nil
}
