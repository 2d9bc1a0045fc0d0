package handler

import (
	"context"
	"slices"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/middleware"
)

// HandleText routes plain text: menu aliases first, then admin dialogue input.
func (h *Handler) HandleText(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := update.Message.Text
	// Skip commands
	if strings.HasPrefix(text, "/") {
		return
	}

	sender := middleware.GetSender(ctx)
	if sender == nil {
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	switch {
	case slices.Contains(config.StartAliases, normalized):
		h.sendStart(ctx)
		return
	case slices.Contains(config.AdminAliases, normalized):
		h.sendAdminMenu(ctx)
		return
	}

	h.handleAdminInput(ctx, sender, text)
}
