package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dialoguebot/internal/bot"
	"dialoguebot/internal/config"
	"dialoguebot/internal/dialogue"
	"dialoguebot/internal/escalation"
	"dialoguebot/internal/menu"
	"dialoguebot/internal/providers"
	"dialoguebot/internal/storage"
	"dialoguebot/internal/storage/ch"
	"dialoguebot/internal/storage/stubs"
)

const shutdownTimeout = 10 * time.Second

// App represents the application
type App struct {
	config  *config.Config
	logger  *zap.Logger
	journal storage.Journal
	api     *tgbotapi.BotAPI
	bot     *bot.Bot
	server  *http.Server
}

// LoadConfig reads envFiles (".env" when none are given) and then the environment.
// Variables already set in the environment win over the files.
func LoadConfig(envFiles ...string) (*config.Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// New creates and initializes a new application instance
func New(envFiles ...string) (*App, error) {
	cfg, err := LoadConfig(envFiles...)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}
	logger.Info("Starting dialogue bot...")

	if err := app.initJournal(); err != nil {
		return nil, err
	}
	if err := app.initBot(); err != nil {
		return nil, err
	}
	app.initHTTPServer()

	return app, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// initJournal opens the dialogue journal
func (a *App) initJournal() error {
	var journal storage.Journal
	if a.config.UseMemoryJournal {
		a.logger.Info("Using in-memory journal")
		journal = stubs.NewMemoryJournal()
	} else {
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.String("user", a.config.ClickHouseUser),
			zap.Bool("tls", a.config.ClickHouseUseTLS),
		)
		chJournal, err := ch.NewClickHouseJournal(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		journal = chJournal
	}

	if err := journal.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}
	a.journal = journal
	return nil
}

// buildGateway creates every provider from cfg, sharing one HTTP client.
func buildGateway(cfg *config.Config) *providers.Gateway {
	client := providers.NewHTTPClient(cfg.ProviderTimeout)
	return providers.NewGateway(
		providers.NewSoccerFeed(providers.SoccerConfig{
			APIKey:  cfg.RapidAPIKey,
			Host:    cfg.SoccerAPIHost,
			BaseURL: cfg.SoccerBaseURL,
		}, client),
		providers.NewMovieFeed(providers.MovieConfig{
			AccessToken: cfg.MovieAccessToken,
			BaseURL:     cfg.MovieBaseURL,
		}, client),
		providers.NewCryptoFeed(),
		providers.NewConversationalReply(providers.ConversationConfig{
			APIKey:  cfg.GPTAPIKey,
			Model:   cfg.GPTModel,
			BaseURL: cfg.GPTBaseURL,
		}, client),
	)
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	catalog, err := menu.Load(a.config.MenuCatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load menu catalog: %w", err)
	}

	api, err := bot.NewBotAPI(a.config.TelegramToken, a.logger)
	if err != nil {
		return err
	}
	a.api = api

	gateway := buildGateway(a.config)
	for _, name := range gateway.Names() {
		a.logger.Debug("Provider registered", zap.String("provider", name))
	}

	a.bot = bot.NewBot(
		api,
		dialogue.NewMachine(catalog),
		dialogue.NewStore(),
		gateway,
		a.journal,
		escalation.New(a.logger, api, a.config.AdminChatID),
		a.logger,
		bot.Options{
			ProviderTimeout:      a.config.ProviderTimeout,
			MaxResultBlocks:      a.config.MaxResultBlocks,
			MaxConcurrentUpdates: a.config.MaxConcurrentUpdates,
		},
	)
	return nil
}

// routes returns the HTTP handler for health checks, metrics and the webhook
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		mode := "polling"
		if a.config.WebhookMode {
			mode = "webhook"
		}
		fmt.Fprintf(w, "Dialogue bot is running (mode: %s)", mode)
	})

	mux.Handle("/metrics", promhttp.Handler())

	if a.config.WebhookMode {
		mux.Handle(bot.WebhookPath, a.bot.WebhookHandler())
	}
	return mux
}

// initHTTPServer initializes the HTTP server for health checks and webhook
func (a *App) initHTTPServer() {
	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      a.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.bot.RegisterCommands(); err != nil {
		a.logger.Warn("Failed to register bot commands", zap.Error(err))
	}

	if a.config.WebhookMode {
		a.logger.Info("Starting bot in WEBHOOK mode", zap.String("url", a.config.WebhookURL))
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
	} else {
		go a.bot.StartPolling(a.api)
	}

	<-ctx.Done()
	a.logger.Info("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
	if err := a.bot.Shutdown(ctx); err != nil {
		a.logger.Warn("Bot shutdown incomplete", zap.Error(err))
	}

	if err := a.journal.Close(); err != nil {
		a.logger.Error("Error closing journal", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return nil
}
