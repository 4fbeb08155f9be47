package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dialoguebot/internal/dialogue"
)

// answerCallback stops the client's loading indicator on the pressed button.
func (b *Bot) answerCallback(logger *zap.Logger, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		errorsTotal.WithLabelValues("answer_callback").Inc()
		logger.Warn("Failed to answer callback query", zap.String("callback_id", query.ID), zap.Error(err))
	}
}

// keyboard renders options as a single row; each button's payload equals its label.
func keyboard(options []string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, opt := range options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(opt, opt))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// showKeyboard edits the originating message when asked to and one exists,
// falling back to a new message.
func (b *Bot) showKeyboard(logger *zap.Logger, chatID int64, origin *tgbotapi.Message, k dialogue.ShowKeyboard) {
	markup := keyboard(k.Options)

	if k.ReplaceOrigin && origin != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, origin.MessageID, k.Text, markup)
		_, err := b.api.Send(edit)
		if err == nil {
			return
		}
		logger.Warn("Failed to edit message, sending a new one",
			zap.Int("message_id", origin.MessageID), zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, k.Text)
	msg.ReplyMarkup = markup
	b.send(logger, msg)
}
