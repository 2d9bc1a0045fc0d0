package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/domain"
)

// OpsLogger mirrors notable events into topics of an operator chat.
type OpsLogger struct {
	sender MessageSender
	cfg    *config.Config
	money  Money
}

func NewOpsLogger(sender MessageSender, cfg *config.Config) *OpsLogger {
	return &OpsLogger{
		sender: sender,
		cfg:    cfg,
		money:  Money{Exponent: cfg.CurrencyExponent, Symbol: cfg.CurrencySymbol},
	}
}

type LogType string

const (
	LogTypeError    LogType = "error"
	LogTypePurchase LogType = "purchase"
	LogTypeBalance  LogType = "balance"
)

func (l *OpsLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.topicID(logType)
	if topicID == 0 {
		return
	}

	if runes := []rune(message); len(runes) > config.MaxTelegramMessageLen {
		message = string(runes[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.OpsLogTimeout)
	defer cancel()

	_, err := l.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *OpsLogger) LogError(err error, where string) {
	l.Log(LogTypeError, fmt.Sprintf("❌ Error\n\nContext: %s\nError: %s\nTime: %s",
		where, err.Error(), time.Now().Format("2006-01-02 15:04:05")))
}

func (l *OpsLogger) LogPurchase(user string, receipt *domain.PurchaseReceipt) {
	if l == nil {
		return
	}
	remnawaveID := receipt.Subscription.RemnawaveID
	if remnawaveID == "" {
		remnawaveID = "-"
	}
	l.Log(LogTypePurchase, fmt.Sprintf("🛒 VPN Purchase\n\nUser: %s (%d)\nPlan: %d дней\nCharged: %s\nBalance: %s\nRemnawave ID: %s",
		user, receipt.Subscription.UserID, receipt.Subscription.PlanDays,
		l.money.Format(receipt.Charged), l.money.Format(receipt.NewBalance), remnawaveID))
}

func (l *OpsLogger) LogBalanceAdjust(adminID, targetID, delta, balance int64) {
	if l == nil {
		return
	}
	l.Log(LogTypeBalance, fmt.Sprintf("💰 Balance Adjusted\n\nAdmin: %d\nUser: %d\nDelta: %s\nBalance: %s",
		adminID, targetID, l.money.FormatSigned(delta), l.money.Format(balance)))
}

func (l *OpsLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypePurchase:
		return l.cfg.LogTopicPurchase
	case LogTypeBalance:
		return l.cfg.LogTopicBalance
	default:
		return 0
	}
}
