package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type ctxKey string

const SenderKey ctxKey = "sender"

// Sender identifies who sent an update and where to reply.
type Sender struct {
	ID       int64
	Username string
	ChatID   int64
	IsAdmin  bool
}

// GetSender extracts the sender from context.
func GetSender(ctx context.Context) *Sender {
	s, ok := ctx.Value(SenderKey).(*Sender)
	if !ok {
		return nil
	}
	return s
}

func WithSender(ctx context.Context, s *Sender) context.Context {
	return context.WithValue(ctx, SenderKey, s)
}

// SenderLoader puts the sender of every message and callback into context.
// It never touches storage: accounts are created by the handlers.
func SenderLoader(admins interface{ IsAdmin(int64) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if s := senderFromUpdate(update); s != nil {
				s.IsAdmin = admins.IsAdmin(s.ID)
				ctx = WithSender(ctx, s)
			}
			next(ctx, b, update)
		}
	}
}

func senderFromUpdate(update *models.Update) *Sender {
	switch {
	case update.Message != nil:
		if update.Message.From == nil {
			return nil
		}
		return &Sender{
			ID:       update.Message.From.ID,
			Username: update.Message.From.Username,
			ChatID:   update.Message.Chat.ID,
		}
	case update.CallbackQuery != nil:
		from := update.CallbackQuery.From
		chatID := from.ID
		switch msg := update.CallbackQuery.Message; {
		case msg.Message != nil:
			chatID = msg.Message.Chat.ID
		case msg.InaccessibleMessage != nil:
			chatID = msg.InaccessibleMessage.Chat.ID
		}
		return &Sender{ID: from.ID, Username: from.Username, ChatID: chatID}
	default:
		return nil
	}
}
