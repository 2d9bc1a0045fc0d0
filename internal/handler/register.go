package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
// The catch-all text handler goes last.
func (h *Handler) Register(b *bot.Bot) {
	// Commands
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypePrefix, h.handleAdmin)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypePrefix, h.handleCancel)

	// Storefront callbacks
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackCabinet, bot.MatchTypeExact, h.handleCabinet)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackBuyPlan, bot.MatchTypeExact, h.handleBuy)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackMySubs, bot.MatchTypeExact, h.handleMySubs)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackCheckSub, bot.MatchTypeExact, h.handleCheckSub)

	// Admin callbacks
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackAdminBalance, bot.MatchTypeExact, h.handleAdminBalance)

	// Aliases and admin dialogue input
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.HandleText)
}

// HandleNoop acknowledges callbacks nobody else handles so the client stops spinning.
func (h *Handler) HandleNoop(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		h.answer(ctx, update.CallbackQuery, "", false)
	}
}
