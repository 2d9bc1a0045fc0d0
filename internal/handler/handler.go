package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/service"
	"github.com/set-night/vpnshop/internal/telegram"
)

// BotAPI is the part of *bot.Bot the handlers reply through.
type BotAPI interface {
	telegram.MessageSender
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	api          BotAPI
	cfg          *config.Config
	accounts     *service.AccountService
	purchases    *service.PurchaseService
	adminBalance *service.AdminBalanceService
	opsLog       *telegram.OpsLogger
	texts        texts
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	API          BotAPI
	Cfg          *config.Config
	Accounts     *service.AccountService
	Purchases    *service.PurchaseService
	AdminBalance *service.AdminBalanceService
	OpsLog       *telegram.OpsLogger
}

func New(deps Deps) *Handler {
	return &Handler{
		api:          deps.API,
		cfg:          deps.Cfg,
		accounts:     deps.Accounts,
		purchases:    deps.Purchases,
		adminBalance: deps.AdminBalance,
		opsLog:       deps.OpsLog,
		texts: texts{
			money:       telegram.Money{Exponent: deps.Cfg.CurrencyExponent, Symbol: deps.Cfg.CurrencySymbol},
			channelHint: deps.Cfg.ChannelHint(),
		},
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	if err := telegram.SendText(ctx, h.api, chatID, text, markup); err != nil {
		slog.Error("failed to send reply", "error", err, "chat_id", chatID)
	}
}

func (h *Handler) answer(ctx context.Context, cq *models.CallbackQuery, text string, alert bool) {
	_, err := h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		slog.Warn("failed to answer callback", "error", err, "data", cq.Data)
	}
}

// fail reports an internal error to logs and the ops chat and gives the user a generic reply.
func (h *Handler) fail(ctx context.Context, chatID int64, err error, where string) {
	slog.Error("request failed", "error", err, "where", where, "chat_id", chatID)
	h.opsLog.LogError(err, where)
	h.reply(ctx, chatID, msgInternalError, nil)
}

// ReportPanic forwards a recovered panic to the ops chat.
func (h *Handler) ReportPanic(err error) {
	h.opsLog.LogError(err, "handler panic")
}

func (h *Handler) userMenu() *models.InlineKeyboardMarkup {
	return telegram.UserMenu(h.texts.planLabel(h.purchases.Plan()))
}
