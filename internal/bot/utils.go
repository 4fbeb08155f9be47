package bot

import (
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxMessageLength is Telegram's limit for a text message, in characters.
const maxMessageLength = 4096

// sendText sends text, split into several messages when it exceeds Telegram's limit.
func (b *Bot) sendText(logger *zap.Logger, chatID int64, text string) {
	for _, part := range splitMessage(text, maxMessageLength) {
		b.send(logger, tgbotapi.NewMessage(chatID, part))
	}
}

// send delivers c. Failures are logged only: the admin chat goes through the same transport.
func (b *Bot) send(logger *zap.Logger, c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		errorsTotal.WithLabelValues("send").Inc()
		logger.Error("Failed to send message", zap.Error(err))
	}
}

// splitMessage cuts text into chunks of at most limit runes.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > 0 {
		n := limit
		if len(runes) < n {
			n = len(runes)
		}
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
}
