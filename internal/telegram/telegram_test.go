package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (r *recordingSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, params)
	return &models.Message{}, nil
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name   string
		money  Money
		amount int64
		want   string
	}{
		{"Rubles", Money{Exponent: 0, Symbol: "₽"}, 299, "299₽"},
		{"Zero", Money{Exponent: 0, Symbol: "₽"}, 0, "0₽"},
		{"Negative", Money{Exponent: 0, Symbol: "₽"}, -50, "-50₽"},
		{"Cents", Money{Exponent: 2, Symbol: "$"}, 29900, "299.00$"},
		{"CentsFraction", Money{Exponent: 2, Symbol: "$"}, 5, "0.05$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.money.Format(tt.amount))
		})
	}

	rub := Money{Symbol: "₽"}
	assert.Equal(t, "+500₽", rub.FormatSigned(500))
	assert.Equal(t, "-200₽", rub.FormatSigned(-200))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	parts := SplitMessage(strings.Repeat("я", 25), 10)
	require.Len(t, parts, 3)
	assert.Equal(t, strings.Repeat("я", 10), parts[0])
	assert.Equal(t, strings.Repeat("я", 5), parts[2])

	parts = SplitMessage("aaaaaaa\nbbbbbbbbbb", 10)
	require.Len(t, parts, 2)
	assert.Equal(t, "aaaaaaa\n", parts[0])
	assert.Equal(t, "bbbbbbbbbb", parts[1])
}

func TestSendTextAttachesMarkupToLastPart(t *testing.T) {
	sender := &recordingSender{}
	text := strings.Repeat("x", config.MaxTelegramMessageLen+10)

	err := SendText(context.Background(), sender, 42, text, AdminMenu())
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)
	assert.Nil(t, sender.sent[0].ReplyMarkup)
	assert.NotNil(t, sender.sent[1].ReplyMarkup)
	assert.Equal(t, int64(42), sender.sent[1].ChatID)
}

func TestSendTextError(t *testing.T) {
	sender := &recordingSender{err: errors.New("forbidden")}
	err := SendText(context.Background(), sender, 42, "hi", nil)
	assert.Error(t, err)
}

func TestUserMenu(t *testing.T) {
	menu := UserMenu("30 дней / 299₽")
	require.Len(t, menu.InlineKeyboard, 4)
	assert.Equal(t, CallbackBuyPlan, menu.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "🛒 Купить VPN (30 дней / 299₽)", menu.InlineKeyboard[1][0].Text)

	withLink := SubscribeMenu("https://t.me/vpn_channel", "30 дней / 299₽")
	require.Len(t, withLink.InlineKeyboard, 5)
	assert.Equal(t, "https://t.me/vpn_channel", withLink.InlineKeyboard[0][0].URL)
}

func TestOpsLogger(t *testing.T) {
	cfg := &config.Config{
		LogTelegramChatID: -100500,
		LogTopicPurchase:  7,
		CurrencySymbol:    "₽",
	}

	t.Run("RoutesToTopic", func(t *testing.T) {
		sender := &recordingSender{}
		NewOpsLogger(sender, cfg).LogPurchase("@alice", &domain.PurchaseReceipt{
			Subscription: domain.Subscription{UserID: 555, PlanDays: 30, RemnawaveID: "abc-1"},
			Charged:      299,
		})
		require.Len(t, sender.sent, 1)
		assert.Equal(t, int64(-100500), sender.sent[0].ChatID)
		assert.Equal(t, 7, sender.sent[0].MessageThreadID)
		assert.Contains(t, sender.sent[0].Text, "299₽")
		assert.Contains(t, sender.sent[0].Text, "abc-1")
	})

	t.Run("SkipsUnconfiguredTopic", func(t *testing.T) {
		sender := &recordingSender{}
		NewOpsLogger(sender, cfg).LogBalanceAdjust(1, 555, -50, 249)
		assert.Empty(t, sender.sent)
	})

	t.Run("SkipsWithoutChat", func(t *testing.T) {
		sender := &recordingSender{}
		NewOpsLogger(sender, &config.Config{LogTopicError: 3}).LogError(errors.New("boom"), "test")
		assert.Empty(t, sender.sent)
	})
}
