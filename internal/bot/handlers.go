package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dialoguebot/internal/dialogue"
	"dialoguebot/internal/models"
)

// classify turns an update into a dialogue event and the chat it belongs to.
// ok is false when the update carries no chat.
func classify(update tgbotapi.Update) (chatID int64, ev dialogue.Event, ok bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		msg := update.Message
		if msg.IsCommand() {
			if cmd, known := dialogue.ParseCommand(msg.Command()); known {
				return msg.Chat.ID, dialogue.CommandEvent{Command: cmd}, true
			}
		}
		// Unknown slash commands are plain text. Media without text yields an empty TextEvent.
		return msg.Chat.ID, dialogue.TextEvent{Text: msg.Text}, true

	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message != nil && q.Message.Chat != nil {
			return q.Message.Chat.ID, dialogue.CallbackEvent{Payload: q.Data}, true
		}
		if q.From != nil {
			return q.From.ID, dialogue.CallbackEvent{Payload: q.Data}, true
		}
		return 0, dialogue.UnrecognizedEvent{}, false
	}

	if chat := update.FromChat(); chat != nil {
		return chat.ID, dialogue.UnrecognizedEvent{}, true
	}
	return 0, dialogue.UnrecognizedEvent{}, false
}

// HandleUpdate processes a single update. Errors and panics are reported and never escape.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	traceID := uuid.NewString()
	logger := b.logger.With(zap.String("trace_id", traceID), zap.Int("update_id", update.UpdateID))

	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			errorsTotal.WithLabelValues("panic").Inc()
			b.reporter.Report(ctx, "update", fmt.Errorf("panic: %v", r),
				zap.String("trace_id", traceID), zap.Int("update_id", update.UpdateID))
		}
	}()

	if update.CallbackQuery != nil {
		b.answerCallback(logger, update.CallbackQuery)
	}

	chatID, ev, ok := classify(update)
	updatesProcessed.WithLabelValues(ev.Kind()).Inc()
	if !ok {
		logger.Warn("Received update without a chat")
		return
	}
	logger = logger.With(zap.Int64("chat_id", chatID))

	var out dialogue.Outcome
	prev, next, gen := b.store.Update(chatID, func(cur dialogue.State) (dialogue.State, bool) {
		out = b.machine.Transition(cur, ev)
		return out.Next, out.Reset
	})

	logger.Debug("Transition",
		zap.String("event", ev.Kind()),
		zap.String("from", prev.StateName()),
		zap.String("to", next.StateName()),
		zap.Bool("reset", out.Reset),
	)
	transitionsTotal.WithLabelValues(prev.StateName(), next.StateName()).Inc()
	b.recordTransition(ctx, logger, models.Transition{
		TraceID:   traceID,
		ChatID:    chatID,
		Event:     ev.Kind(),
		FromState: prev.StateName(),
		ToState:   next.StateName(),
		Reset:     out.Reset,
		At:        time.Now(),
	})

	var origin *tgbotapi.Message
	if update.CallbackQuery != nil {
		origin = update.CallbackQuery.Message
	}
	b.applyActions(logger, chatID, origin, out.Actions)

	if out.Call != nil {
		b.relay(ctx, logger, traceID, chatID, gen, *out.Call)
	}
}

func (b *Bot) applyActions(logger *zap.Logger, chatID int64, origin *tgbotapi.Message, actions []dialogue.Action) {
	for _, action := range actions {
		switch a := action.(type) {
		case dialogue.SendText:
			b.sendText(logger, chatID, a.Text)
		case dialogue.ShowKeyboard:
			b.showKeyboard(logger, chatID, origin, a)
		case dialogue.ShowCommandsMenu:
			b.showCommandsMenu(logger, chatID)
		case dialogue.LogWarning:
			logger.Warn(a.Message, zap.String("payload", a.Payload))
		default:
			logger.Error("Unknown action", zap.String("type", fmt.Sprintf("%T", a)))
		}
	}
}

func (b *Bot) recordTransition(ctx context.Context, logger *zap.Logger, t models.Transition) {
	if b.journal == nil {
		return
	}
	if err := b.journal.RecordTransition(ctx, t); err != nil {
		errorsTotal.WithLabelValues("journal").Inc()
		logger.Warn("Failed to record transition", zap.Error(err))
	}
}

func (b *Bot) recordProviderCall(ctx context.Context, logger *zap.Logger, c models.ProviderCall) {
	if b.journal == nil {
		return
	}
	if err := b.journal.RecordProviderCall(ctx, c); err != nil {
		errorsTotal.WithLabelValues("journal").Inc()
		logger.Warn("Failed to record provider call", zap.Error(err))
	}
}
