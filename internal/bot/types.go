package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dialoguebot/internal/dialogue"
	"dialoguebot/internal/escalation"
	"dialoguebot/internal/storage"
)

// Sender is the outbound Telegram transport. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Poller receives updates by long polling. *tgbotapi.BotAPI satisfies it.
type Poller interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Gateway invokes a named provider.
type Gateway interface {
	Invoke(ctx context.Context, name, query string) ([]string, error)
}

// Options tune the router.
type Options struct {
	ProviderTimeout      time.Duration
	MaxResultBlocks      int
	MaxConcurrentUpdates int
}

// Bot routes Telegram updates through the dialogue state machine.
type Bot struct {
	api      Sender
	machine  *dialogue.Machine
	store    *dialogue.Store
	gateway  Gateway
	journal  storage.Journal
	reporter *escalation.Reporter
	logger   *zap.Logger
	opts     Options

	// sem bounds the number of updates processed at once.
	sem      chan struct{}
	inflight sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	stopping chan struct{}

	// ctx is handed to update handlers; it outlives intake until Shutdown finishes.
	ctx    context.Context
	cancel context.CancelFunc
}
