package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	// AdminChatID receives error summaries; 0 disables forwarding.
	AdminChatID int64 `envconfig:"ADMIN_CHAT_ID"`

	// Provider credentials. A missing credential is not a startup error; the
	// affected provider reports it per call.
	GPTAPIKey        string `envconfig:"GPT_API_KEY"`
	GPTModel         string `envconfig:"GPT_MODEL" default:"gpt-4o-mini"`
	GPTBaseURL       string `envconfig:"GPT_BASE_URL"`
	RapidAPIKey      string `envconfig:"RAPIDAPI_KEY"`
	SoccerBaseURL    string `envconfig:"SOCCER_BASE_URL" default:"https://sportapi7.p.rapidapi.com/api/v1"`
	SoccerAPIHost    string `envconfig:"SOCCER_API_HOST" default:"sportapi7.p.rapidapi.com"`
	MovieAccessToken string `envconfig:"MOVIE_ACCESS_TOKEN"`
	MovieBaseURL     string `envconfig:"MOVIE_BASE_URL" default:"https://api.themoviedb.org/3"`

	ProviderTimeout      time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"15s"`
	MaxResultBlocks      int           `envconfig:"MAX_RESULT_BLOCKS" default:"10"`
	MaxConcurrentUpdates int           `envconfig:"MAX_CONCURRENT_UPDATES" default:"64"`
	MenuCatalogPath      string        `envconfig:"MENU_CATALOG_PATH"`

	// Bot mode configuration
	WebhookMode bool   `envconfig:"WEBHOOK_MODE"`
	WebhookURL  string `envconfig:"WEBHOOK_URL"`
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG"`

	// Dialogue journal
	UseMemoryJournal   bool   `envconfig:"USE_MEMORY_JOURNAL"`
	ClickHouseHost     string `envconfig:"CLICKHOUSE_HOST"`
	ClickHousePort     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	ClickHouseDatabase string `envconfig:"CLICKHOUSE_DATABASE" default:"default"`
	ClickHouseUser     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	ClickHousePassword string `envconfig:"CLICKHOUSE_PASSWORD"`
	ClickHouseUseTLS   bool   `envconfig:"CLICKHOUSE_USE_TLS"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.WebhookMode && strings.TrimSpace(c.WebhookURL) == "" {
		return fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
	}
	c.WebhookURL = strings.TrimRight(c.WebhookURL, "/")

	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be > 0, got %s", c.ProviderTimeout)
	}
	if c.MaxResultBlocks <= 0 {
		return fmt.Errorf("MAX_RESULT_BLOCKS must be > 0, got %d", c.MaxResultBlocks)
	}
	if c.MaxConcurrentUpdates <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_UPDATES must be > 0, got %d", c.MaxConcurrentUpdates)
	}

	if !c.UseMemoryJournal {
		if c.ClickHouseHost == "" {
			return fmt.Errorf("CLICKHOUSE_HOST is required when USE_MEMORY_JOURNAL is not set")
		}
		if c.ClickHousePort <= 0 {
			return fmt.Errorf("invalid CLICKHOUSE_PORT: %d", c.ClickHousePort)
		}
	}
	return nil
}
