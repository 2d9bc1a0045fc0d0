package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/domain"
	"github.com/set-night/vpnshop/internal/middleware"
	"github.com/set-night/vpnshop/internal/service"
)

func (h *Handler) handleBuy(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	sender := middleware.GetSender(ctx)
	if cq == nil || sender == nil {
		return
	}
	defer h.answer(ctx, cq, "", false)

	result, err := h.purchases.Purchase(ctx, sender.ID, sender.Username)
	if err != nil {
		h.fail(ctx, sender.ChatID, err, "purchase")
		return
	}

	h.reply(ctx, sender.ChatID, h.texts.purchaseResult(result), nil)

	switch result.Outcome {
	case service.OutcomeCompleted:
		h.opsLog.LogPurchase(handleOf(sender), result.Receipt)
	case service.OutcomeProvisionFailed:
		h.opsLog.LogError(result.Err, "remnawave provisioning")
	}
}

func (h *Handler) handleCabinet(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	sender := middleware.GetSender(ctx)
	if cq == nil || sender == nil {
		return
	}
	defer h.answer(ctx, cq, "", false)

	cabinet, err := h.accounts.Cabinet(ctx, sender.ID, sender.Username)
	if err != nil {
		h.fail(ctx, sender.ChatID, err, "cabinet")
		return
	}
	h.reply(ctx, sender.ChatID, h.texts.cabinet(cabinet), nil)
}

func (h *Handler) handleMySubs(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	sender := middleware.GetSender(ctx)
	if cq == nil || sender == nil {
		return
	}
	defer h.answer(ctx, cq, "", false)

	subs, err := h.accounts.Subscriptions(ctx, sender.ID)
	if err != nil {
		h.fail(ctx, sender.ChatID, err, "my subscriptions")
		return
	}
	h.reply(ctx, sender.ChatID, subscriptionsList(subs), nil)
}

func (h *Handler) handleCheckSub(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	sender := middleware.GetSender(ctx)
	if cq == nil || sender == nil {
		return
	}
	defer h.answer(ctx, cq, "", false)

	m := h.accounts.CheckChannel(ctx, sender.ID)
	switch m.Status {
	case domain.MembershipMember:
		h.reply(ctx, sender.ChatID, msgSubscribed, nil)
	case domain.MembershipUndetermined:
		h.reply(ctx, sender.ChatID, gateError(m.Reason), nil)
	default:
		h.reply(ctx, sender.ChatID, h.texts.notSubscribed(), nil)
	}
}

func handleOf(s *middleware.Sender) string {
	u := domain.User{ID: s.ID, Username: s.Username}
	return u.Handle()
}
