package bot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dialoguebot/internal/dialogue"
	"dialoguebot/internal/models"
	"dialoguebot/internal/providers"
)

const defaultProviderTimeout = 15 * time.Second

// relay invokes the provider named by call and forwards its result to the chat.
// A result that arrives after the dialogue was reset is dropped.
func (b *Bot) relay(ctx context.Context, logger *zap.Logger, traceID string, chatID int64, gen uint64, call dialogue.ProviderCall) {
	target := string(call.Target)
	logger = logger.With(zap.String("provider", target), zap.String("query", call.Query))

	callCtx, cancel := context.WithTimeout(ctx, b.opts.ProviderTimeout)
	defer cancel()

	started := time.Now()
	blocks, err := b.gateway.Invoke(callCtx, target, call.Query)
	elapsed := time.Since(started)

	outcome := providers.KindName(err)
	providerCalls.WithLabelValues(target, outcome).Inc()
	providerDuration.WithLabelValues(target).Observe(elapsed.Seconds())

	stale := b.store.Generation(chatID) != gen
	b.recordProviderCall(ctx, logger, models.ProviderCall{
		TraceID:   traceID,
		ChatID:    chatID,
		Provider:  target,
		Query:     call.Query,
		Outcome:   outcome,
		Blocks:    len(blocks),
		Duration:  elapsed,
		Discarded: stale,
		At:        started,
	})

	if stale {
		staleResults.Inc()
		logger.Info("Discarding provider result, dialogue was reset", zap.Duration("elapsed", elapsed))
		return
	}

	if err != nil {
		b.handleProviderError(ctx, logger, chatID, gen, call, err)
		return
	}

	logger.Info("Provider call succeeded", zap.Int("blocks", len(blocks)), zap.Duration("elapsed", elapsed))
	if len(blocks) == 0 {
		b.sendText(logger, chatID, dialogue.NoDataText)
		return
	}

	if call.Header != "" {
		b.sendText(logger, chatID, call.Header)
	}
	if len(blocks) > b.opts.MaxResultBlocks {
		logger.Debug("Truncating provider result", zap.Int("blocks", len(blocks)), zap.Int("max", b.opts.MaxResultBlocks))
		blocks = blocks[:b.opts.MaxResultBlocks]
	}
	for _, block := range blocks {
		b.sendText(logger, chatID, block)
	}
}

func (b *Bot) handleProviderError(ctx context.Context, logger *zap.Logger, chatID int64, gen uint64, call dialogue.ProviderCall, err error) {
	fields := []zap.Field{
		zap.String("kind", providers.KindName(err)),
		zap.Int64("chat_id", chatID),
		zap.String("query", call.Query),
	}
	var se *providers.ServiceError
	if errors.As(err, &se) && se.Detail != "" {
		fields = append(fields, zap.String("body", se.Detail))
	}

	switch providers.KindOf(err) {
	case providers.ErrNoDataForQuery, providers.ErrNotImplemented:
		logger.Info("Provider returned no result", zap.Error(err))
	default:
		b.reporter.Report(ctx, "provider "+string(call.Target), err, fields...)
	}

	if call.ResetOnError && b.store.ResetIf(chatID, gen) {
		logger.Info("Dialogue reset after provider failure")
	}
	b.sendText(logger, chatID, failureText(err))
}

// failureText is the user-facing message for a provider error.
func failureText(err error) string {
	switch providers.KindOf(err) {
	case providers.ErrNotImplemented:
		return dialogue.NotImplementedText
	case providers.ErrNoDataForQuery:
		return dialogue.NoDataText
	}
	return dialogue.FetchFailedText
}
