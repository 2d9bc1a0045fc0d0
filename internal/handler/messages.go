package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/set-night/vpnshop/internal/domain"
	"github.com/set-night/vpnshop/internal/service"
	"github.com/set-night/vpnshop/internal/telegram"
)

const (
	msgInternalError     = "⚠️ Произошла ошибка. Попробуйте позже."
	msgNoRights          = "Недостаточно прав."
	msgAdminPanel        = "Админ-панель"
	msgSubscribed        = "Подписка подтверждена ✅"
	msgNoSubscriptions   = "У вас пока нет подписок."
	msgPurchaseBusy      = "⏳ Покупка уже выполняется, дождитесь результата."
	msgPromptTarget      = "Введите ID пользователя, которому изменить баланс:\n(для отмены отправьте /cancel)"
	msgInvalidTarget     = "Нужен числовой user_id."
	msgInvalidDelta      = "Неверный формат суммы. Пример: 300 или -150"
	msgAdminAborted      = "Недостаточно прав. Изменение баланса отменено."
	msgAdminCancelled    = "Изменение баланса отменено."
	msgNothingToCancel   = "Нечего отменять."
	msgGateMisconfigured = "Бот не может проверить подписку. Проверьте MAIN_CHANNEL и права бота в канале."
	msgGateUnavailable   = "Не удалось проверить подписку на канал: Telegram временно недоступен. Попробуйте позже."
)

// texts renders replies that depend on configuration.
type texts struct {
	money       telegram.Money
	channelHint string
}

func (t texts) planLabel(plan domain.Plan) string {
	return fmt.Sprintf("%d дней / %s", plan.Days, t.money.Format(plan.Cost))
}

func (t texts) welcome(handle string, balance int64) string {
	return fmt.Sprintf("Привет, %s!\nВаш баланс: %s", handle, t.money.Format(balance))
}

func (t texts) subscribePrompt() string {
	return fmt.Sprintf("Чтобы пользоваться ботом, подпишитесь на канал: %s\n"+
		"После подписки нажмите «Проверить подписку на канал».", t.channelHint)
}

func (t texts) notSubscribed() string {
	return fmt.Sprintf("Вы ещё не подписаны на %s", t.channelHint)
}

func (t texts) subscribeFirst() string {
	return fmt.Sprintf("Сначала подпишитесь на канал %s и подтвердите подписку.", t.channelHint)
}

func gateError(reason domain.UndeterminedReason) string {
	if reason == domain.ReasonMisconfigured {
		return msgGateMisconfigured
	}
	return msgGateUnavailable
}

func (t texts) cabinet(c *service.Cabinet) string {
	return fmt.Sprintf("Личный кабинет\nБаланс: %s\nАктивных/исторических подписок: %d",
		t.money.Format(c.User.Balance), c.SubscriptionCount)
}

func subscriptionsList(subs []domain.Subscription) string {
	if len(subs) == 0 {
		return msgNoSubscriptions
	}
	lines := make([]string, 0, len(subs)+1)
	lines = append(lines, "Ваши подписки:")
	for _, s := range subs {
		lines = append(lines, fmt.Sprintf("#%d • %d дн. • %s • remnawave_id=%s",
			s.ID, s.PlanDays, s.Status, orDash(s.RemnawaveID)))
	}
	return strings.Join(lines, "\n")
}

func (t texts) purchaseResult(r *service.PurchaseResult) string {
	switch r.Outcome {
	case service.OutcomeCompleted:
		return fmt.Sprintf("Покупка успешна ✅\nСписано: %s\nПериод: %d дней\nID в панели: %s",
			t.money.Format(r.Receipt.Charged), r.Receipt.Subscription.PlanDays, orDash(r.Receipt.Subscription.RemnawaveID))
	case service.OutcomeNotMember:
		return t.subscribeFirst()
	case service.OutcomeMembershipUndetermined:
		return gateError(r.Membership.Reason)
	case service.OutcomeInsufficientFunds:
		return fmt.Sprintf("Недостаточно средств. Стоимость %s, ваш баланс %s",
			t.money.Format(r.Plan.Cost), t.money.Format(r.Balance))
	case service.OutcomeProvisionFailed:
		return fmt.Sprintf("Ошибка при создании подписки в Remnawave: %s", provisionReason(r.Err))
	case service.OutcomeInProgress:
		return msgPurchaseBusy
	default:
		return msgInternalError
	}
}

func provisionReason(err error) string {
	var perr *service.ProvisionError
	if errors.As(err, &perr) {
		return perr.Reason()
	}
	if err != nil {
		return err.Error()
	}
	return "неизвестная ошибка"
}

func (t texts) adminReply(r *service.AdminReply) string {
	switch r.Step {
	case service.StepNotAdmin:
		return msgNoRights
	case service.StepAborted:
		return msgAdminAborted
	case service.StepPromptTarget:
		return msgPromptTarget
	case service.StepInvalidTarget:
		return msgInvalidTarget
	case service.StepPromptDelta:
		return fmt.Sprintf("Текущий баланс пользователя %d: %s\nВведите сумму изменения, например +500 или -200",
			r.TargetID, t.money.Format(r.Balance))
	case service.StepInvalidDelta:
		return msgInvalidDelta
	case service.StepApplied:
		return fmt.Sprintf("Баланс пользователя %d изменён на %s. Текущий баланс: %s",
			r.TargetID, t.money.FormatSigned(r.Delta), t.money.Format(r.Balance))
	case service.StepCancelled:
		return msgAdminCancelled
	default:
		return msgInternalError
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
