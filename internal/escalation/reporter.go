package escalation

import (
	"context"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxSummary is the longest admin summary, in characters.
const maxSummary = 1024

// Notifier delivers a message to the admin chat. *tgbotapi.BotAPI satisfies it.
type Notifier interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reporter logs handler failures and forwards a short summary to the admin chat.
type Reporter struct {
	logger      *zap.Logger
	notifier    Notifier
	adminChatID int64
}

// New creates a Reporter. Forwarding is disabled when notifier is nil or adminChatID is 0.
func New(logger *zap.Logger, notifier Notifier, adminChatID int64) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{logger: logger, notifier: notifier, adminChatID: adminChatID}
}

// Report records err under scope. It never panics and never returns an error.
func (r *Reporter) Report(ctx context.Context, scope string, err error, fields ...zap.Field) {
	if r == nil || err == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Recovered from panic while reporting error", zap.Any("panic", rec))
		}
	}()

	r.logger.Error("Handler error", append(fields, zap.String("scope", scope), zap.Error(err))...)

	if r.notifier == nil || r.adminChatID == 0 {
		return
	}
	if ctx != nil && ctx.Err() != nil {
		r.logger.Warn("Skipping admin notification, context done", zap.String("scope", scope))
		return
	}

	summary := fmt.Sprintf("Error in %s: %v", scope, err)
	if utf8.RuneCountInString(summary) > maxSummary {
		summary = string([]rune(summary)[:maxSummary]) + "..."
	}
	msg := tgbotapi.NewMessage(r.adminChatID, summary)
	msg.DisableNotification = true
	if _, sendErr := r.notifier.Send(msg); sendErr != nil {
		r.logger.Warn("Failed to forward error to admin chat",
			zap.Int64("admin_chat_id", r.adminChatID),
			zap.Error(sendErr),
		)
	}
}
