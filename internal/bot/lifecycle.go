package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Dispatch schedules update for processing. It blocks while the concurrency
// limit is reached and returns false once the bot is shutting down.
func (b *Bot) Dispatch(update tgbotapi.Update) bool {
	select {
	case b.sem <- struct{}{}:
	case <-b.stopping:
		return false
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.sem
		return false
	}
	b.inflight.Add(1)
	b.mu.Unlock()

	updatesInFlight.Inc()
	go func() {
		defer func() {
			updatesInFlight.Dec()
			<-b.sem
			b.inflight.Done()
		}()
		b.HandleUpdate(b.ctx, update)
	}()
	return true
}

// Run dispatches updates until the channel closes or the bot shuts down.
func (b *Bot) Run(updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-b.stopping:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if !b.Dispatch(update) {
				return
			}
		}
	}
}

// StartPolling removes any webhook and processes updates from long polling. It blocks.
func (b *Bot) StartPolling(poller Poller) {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := poller.GetUpdatesChan(u)

	go func() {
		<-b.stopping
		poller.StopReceivingUpdates()
	}()

	b.logger.Info("Bot started successfully. Waiting for updates...")
	b.Run(updates)
}

// StartWebhook registers webhookURL + WebhookPath with Telegram.
func (b *Bot) StartWebhook(webhookURL string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL + WebhookPath)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	webhookConfig.MaxConnections = 40

	if _, err := b.api.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	b.logger.Info("Bot configured for webhook mode")
	return nil
}

// Shutdown stops accepting updates and waits for in-flight ones until ctx is done.
// Remaining provider calls are cancelled after that.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.cancelIntake()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.cancel()
		return nil
	case <-ctx.Done():
		b.cancel()
		return fmt.Errorf("in-flight updates did not finish: %w", ctx.Err())
	}
}

func (b *Bot) cancelIntake() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.stopping)
	}
}
