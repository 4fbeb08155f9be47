package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dialoguebot/internal/dialogue"
	"dialoguebot/internal/escalation"
	"dialoguebot/internal/storage"
)

const (
	defaultMaxResultBlocks      = 10
	defaultMaxConcurrentUpdates = 64
)

// NewBotAPI connects to Telegram with token.
func NewBotAPI(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))
	return api, nil
}

// NewBot wires the router. A nil journal or reporter is allowed.
func NewBot(
	api Sender,
	machine *dialogue.Machine,
	store *dialogue.Store,
	gateway Gateway,
	journal storage.Journal,
	reporter *escalation.Reporter,
	logger *zap.Logger,
	opts Options,
) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = escalation.New(logger, nil, 0)
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = defaultProviderTimeout
	}
	if opts.MaxResultBlocks <= 0 {
		opts.MaxResultBlocks = defaultMaxResultBlocks
	}
	if opts.MaxConcurrentUpdates <= 0 {
		opts.MaxConcurrentUpdates = defaultMaxConcurrentUpdates
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:      api,
		machine:  machine,
		store:    store,
		gateway:  gateway,
		journal:  journal,
		reporter: reporter,
		logger:   logger,
		opts:     opts,
		sem:      make(chan struct{}, opts.MaxConcurrentUpdates),
		stopping: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}
