package config

import "time"

const (
	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Subscriptions shown in the history reply
	SubscriptionsHistoryLimit = 10

	// Note attached to every panel subscription
	ProvisionNote = "Telegram bot purchase"

	// Failing panel response bodies are cut to this many bytes
	ProvisionErrorBodyLimit = 200

	// Ops log delivery timeout
	OpsLogTimeout = 10 * time.Second

	// Database pool
	DBMaxConns = 20
	DBMinConns = 2

	// Long polling
	PollTimeout = 50 * time.Second
)

// StartAliases are plain-text messages treated like /start.
var StartAliases = []string{"старт", "start", "/start"}

// AdminAliases are plain-text messages treated like /admin.
var AdminAliases = []string{"админ", "admin", "/admin"}
