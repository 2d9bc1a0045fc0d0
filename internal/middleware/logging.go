package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Logging logs every processed update with its type and duration.
// It must run after SenderLoader.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()

			next(ctx, b, update)

			attrs := []any{
				"update_id", update.ID,
				"type", updateType(update),
				"duration", time.Since(start),
			}
			if s := GetSender(ctx); s != nil {
				attrs = append(attrs, "user_id", s.ID, "chat_id", s.ChatID)
			}
			if update.CallbackQuery != nil {
				attrs = append(attrs, "data", update.CallbackQuery.Data)
			}
			slog.Debug("update processed", attrs...)
		}
	}
}

func updateType(update *models.Update) string {
	switch {
	case update.Message != nil:
		return "message"
	case update.CallbackQuery != nil:
		return "callback_query"
	default:
		return "unknown"
	}
}
