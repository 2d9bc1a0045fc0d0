package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// Callback data of the inline menus.
const (
	CallbackCabinet      = "cabinet"
	CallbackBuyPlan      = "buy_plan"
	CallbackMySubs       = "my_subs"
	CallbackCheckSub     = "check_sub"
	CallbackAdminBalance = "admin_balance"
)

func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text: text,
		URL:  url,
	}
}

func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// UserMenu is the main storefront menu. planLabel is the formatted
// "30 дней / 299₽" part of the purchase button.
func UserMenu(planLabel string) *models.InlineKeyboardMarkup {
	return InlineKeyboard(
		ButtonRow(InlineButton("🧾 Личный кабинет", CallbackCabinet)),
		ButtonRow(InlineButton(fmt.Sprintf("🛒 Купить VPN (%s)", planLabel), CallbackBuyPlan)),
		ButtonRow(InlineButton("📦 Мои подписки", CallbackMySubs)),
		ButtonRow(InlineButton("✅ Проверить подписку на канал", CallbackCheckSub)),
	)
}

// SubscribeMenu adds a channel link above the user menu when the hint is a URL.
func SubscribeMenu(channelURL, planLabel string) *models.InlineKeyboardMarkup {
	menu := UserMenu(planLabel)
	if channelURL == "" {
		return menu
	}
	rows := append([][]models.InlineKeyboardButton{
		ButtonRow(URLButton("📢 Подписаться на канал", channelURL)),
	}, menu.InlineKeyboard...)
	return InlineKeyboard(rows...)
}

func AdminMenu() *models.InlineKeyboardMarkup {
	return InlineKeyboard(
		ButtonRow(InlineButton("💰 Изменить баланс", CallbackAdminBalance)),
	)
}
