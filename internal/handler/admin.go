package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/middleware"
	"github.com/set-night/vpnshop/internal/service"
	"github.com/set-night/vpnshop/internal/telegram"
)

func (h *Handler) handleAdmin(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendAdminMenu(ctx)
}

func (h *Handler) sendAdminMenu(ctx context.Context) {
	sender := middleware.GetSender(ctx)
	if sender == nil {
		return
	}
	if !sender.IsAdmin {
		h.reply(ctx, sender.ChatID, msgNoRights, nil)
		return
	}
	h.reply(ctx, sender.ChatID, msgAdminPanel, telegram.AdminMenu())
}

func (h *Handler) handleAdminBalance(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	sender := middleware.GetSender(ctx)
	if cq == nil || sender == nil {
		return
	}

	reply, err := h.adminBalance.Begin(ctx, sender.ID)
	if err != nil {
		h.answer(ctx, cq, "", false)
		h.fail(ctx, sender.ChatID, err, "admin balance")
		return
	}
	if reply.Step == service.StepNotAdmin {
		h.answer(ctx, cq, "Недостаточно прав", true)
		return
	}

	h.reply(ctx, sender.ChatID, h.texts.adminReply(reply), nil)
	h.answer(ctx, cq, "", false)
}

func (h *Handler) handleCancel(ctx context.Context, _ *bot.Bot, update *models.Update) {
	sender := middleware.GetSender(ctx)
	if update.Message == nil || sender == nil {
		return
	}

	cancelled, err := h.adminBalance.Cancel(ctx, sender.ID)
	if err != nil {
		h.fail(ctx, sender.ChatID, err, "cancel")
		return
	}
	if !cancelled {
		h.reply(ctx, sender.ChatID, msgNothingToCancel, nil)
		return
	}
	h.reply(ctx, sender.ChatID, h.texts.adminReply(&service.AdminReply{Step: service.StepCancelled}), nil)
}

// handleAdminInput feeds text into a pending balance dialogue, if any.
func (h *Handler) handleAdminInput(ctx context.Context, sender *middleware.Sender, text string) {
	reply, handled, err := h.adminBalance.Handle(ctx, sender.ID, text)
	if err != nil {
		h.fail(ctx, sender.ChatID, err, "admin balance input")
		return
	}
	if !handled {
		return
	}

	h.reply(ctx, sender.ChatID, h.texts.adminReply(reply), nil)
	if reply.Step == service.StepApplied {
		h.opsLog.LogBalanceAdjust(sender.ID, reply.TargetID, reply.Delta, reply.Balance)
	}
}
