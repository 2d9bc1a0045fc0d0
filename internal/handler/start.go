package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/domain"
	"github.com/set-night/vpnshop/internal/middleware"
	"github.com/set-night/vpnshop/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendStart(ctx)
}

// sendStart registers the sender and shows either the welcome or the subscribe prompt.
func (h *Handler) sendStart(ctx context.Context) {
	sender := middleware.GetSender(ctx)
	if sender == nil {
		return
	}

	result, err := h.accounts.Start(ctx, sender.ID, sender.Username)
	if err != nil {
		h.fail(ctx, sender.ChatID, err, "start")
		return
	}

	if result.Membership.Status == domain.MembershipUndetermined {
		h.reply(ctx, sender.ChatID, gateError(result.Membership.Reason), nil)
	}

	if !result.Membership.IsMember() {
		h.reply(ctx, sender.ChatID, h.texts.subscribePrompt(),
			telegram.SubscribeMenu(h.cfg.MainChannelURL, h.texts.planLabel(h.purchases.Plan())))
		return
	}

	h.reply(ctx, sender.ChatID, h.texts.welcome(result.User.Handle(), result.User.Balance), h.userMenu())
}
