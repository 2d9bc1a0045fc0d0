package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/set-night/vpnshop"
	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/handler"
	"github.com/set-night/vpnshop/internal/middleware"
	"github.com/set-night/vpnshop/internal/repository"
	"github.com/set-night/vpnshop/internal/service"
	"github.com/set-night/vpnshop/internal/telegram"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(vpnshop.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if _, err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ledger := repository.NewLedgerStore(pool)

	// Admin dialogue state
	var dialogs service.DialogStore = service.NewMemoryDialogStore()
	if cfg.RedisURL != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		dialogs = repository.NewRedisDialogStore(rdb, cfg.DialogTTL)
		slog.Info("admin dialogs stored in redis")
	}

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(func(err error) {
				if h != nil {
					h.ReportPanic(err)
				}
			}),
			middleware.SenderLoader(cfg),
			middleware.Logging(),
		),
		bot.WithHTTPClient(config.PollTimeout, &http.Client{Timeout: config.PollTimeout + config.OpsLogTimeout}),
		bot.WithErrorsHandler(func(err error) {
			slog.Error("telegram polling error", "error", err)
		}),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleNoop(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	gate := service.NewMembershipGate(b, cfg.MainChannel)
	if !gate.Enabled() {
		slog.Warn("MAIN_CHANNEL is not set, channel subscription check disabled")
	}
	remnawave := service.NewRemnawaveClient(cfg.SubscriptionURL(), cfg.RemnawaveAPIKey, cfg.ProvisionTimeout)

	// Initialize handler
	h = handler.New(handler.Deps{
		API:          b,
		Cfg:          cfg,
		Accounts:     service.NewAccountService(ledger, gate),
		Purchases:    service.NewPurchaseService(ledger, gate, remnawave, cfg.Plan()),
		AdminBalance: service.NewAdminBalanceService(ledger, cfg, dialogs),
		OpsLog:       telegram.NewOpsLogger(b, cfg),
	})

	// Register all handlers
	h.Register(b)

	// Start bot
	slog.Info("starting bot",
		"username", me.Username,
		"plan_days", cfg.PlanDays,
		"plan_cost", cfg.PlanCost,
		"admins", cfg.AdminIDsString(),
	)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
