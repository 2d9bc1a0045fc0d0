package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover keeps a panicking handler from taking the process down.
// onPanic may be nil.
func Recover(onPanic func(err error)) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in handler",
						"panic", r,
						"update_id", update.ID,
						"stack", string(debug.Stack()),
					)
					if onPanic != nil {
						onPanic(fmt.Errorf("panic: %v", r))
					}
				}
			}()
			next(ctx, b, update)
		}
	}
}
