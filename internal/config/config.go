package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/set-night/vpnshop/internal/domain"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required" validate:"required"`
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// Channel gate
	MainChannel    string `env:"MAIN_CHANNEL"`
	MainChannelURL string `env:"MAIN_CHANNEL_URL" validate:"omitempty,url"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Remnawave panel
	RemnawaveBaseURL              string        `env:"REMNAWAVE_BASE_URL,required" validate:"required,url"`
	RemnawaveAPIKey               string        `env:"REMNAWAVE_API_KEY,required" validate:"required"`
	RemnawaveSubscriptionEndpoint string        `env:"REMNAWAVE_SUBSCRIPTION_ENDPOINT" envDefault:"/api/subscriptions" validate:"startswith=/"`
	ProvisionTimeout              time.Duration `env:"PROVISION_TIMEOUT" envDefault:"20s" validate:"gt=0"`

	// Plan
	PlanDays         int    `env:"PLAN_DAYS" envDefault:"30" validate:"gt=0"`
	PlanCost         int64  `env:"PLAN_COST" envDefault:"299" validate:"gt=0"`
	CurrencyExponent int32  `env:"CURRENCY_EXPONENT" envDefault:"0" validate:"gte=0,lte=4"`
	CurrencySymbol   string `env:"CURRENCY_SYMBOL" envDefault:"₽"`

	// Dialogue state
	RedisURL  string        `env:"REDIS_URL"`
	DialogTTL time.Duration `env:"DIALOG_TTL" envDefault:"30m" validate:"gt=0"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicPurchase  int   `env:"LOG_TOPIC_PURCHASE"`
	LogTopicBalance   int   `env:"LOG_TOPIC_BALANCE"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that env tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// ChannelHint is the link shown to users who must subscribe first.
func (c *Config) ChannelHint() string {
	if c.MainChannelURL != "" {
		return c.MainChannelURL
	}
	return c.MainChannel
}

func (c *Config) Plan() domain.Plan {
	return domain.Plan{Days: c.PlanDays, Cost: c.PlanCost}
}

// SubscriptionURL is the full panel endpoint for subscription creation.
func (c *Config) SubscriptionURL() string {
	return strings.TrimRight(c.RemnawaveBaseURL, "/") + c.RemnawaveSubscriptionEndpoint
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
