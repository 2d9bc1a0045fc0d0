package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/domain"
	"github.com/set-night/vpnshop/internal/middleware"
	"github.com/set-night/vpnshop/internal/service"
	"github.com/set-night/vpnshop/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	messages []*bot.SendMessageParams
	answers  []*bot.AnswerCallbackQueryParams
}

func (f *fakeAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, params)
	return &models.Message{}, nil
}

func (f *fakeAPI) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, params)
	return true, nil
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.messages)
	return f.messages[len(f.messages)-1].Text
}

// memLedger is an in-memory service.Ledger.
type memLedger struct {
	mu    sync.Mutex
	users map[int64]*domain.User
	subs  map[int64][]domain.Subscription
	next  int64
}

func newMemLedger() *memLedger {
	return &memLedger{users: make(map[int64]*domain.User), subs: make(map[int64][]domain.Subscription)}
}

func (l *memLedger) ensure(userID int64, username string) *domain.User {
	u, ok := l.users[userID]
	if !ok {
		u = &domain.User{ID: userID, Username: username, CreatedAt: time.Now()}
		l.users[userID] = u
	}
	return u
}

func (l *memLedger) GetOrCreate(_ context.Context, userID int64, username string) (*domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.ensure(userID, username)
	u.Username = username
	cp := *u
	return &cp, nil
}

func (l *memLedger) GetBalance(_ context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u, ok := l.users[userID]; ok {
		return u.Balance, nil
	}
	return 0, nil
}

func (l *memLedger) AdjustBalance(_ context.Context, userID int64, delta int64, username string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.ensure(userID, username)
	u.Balance += delta
	return u.Balance, nil
}

func (l *memLedger) RecordSubscription(_ context.Context, userID int64, planDays int, remnawaveID string) (*domain.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.record(userID, planDays, remnawaveID), nil
}

func (l *memLedger) record(userID int64, planDays int, remnawaveID string) *domain.Subscription {
	l.next++
	s := domain.Subscription{ID: l.next, UserID: userID, PlanDays: planDays, RemnawaveID: remnawaveID, Status: domain.SubscriptionStatusActive}
	l.subs[userID] = append([]domain.Subscription{s}, l.subs[userID]...)
	return &s
}

func (l *memLedger) ListSubscriptions(_ context.Context, userID int64) ([]domain.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Subscription(nil), l.subs[userID]...), nil
}

func (l *memLedger) CommitPurchase(_ context.Context, userID int64, username string, cost int64, planDays int, remnawaveID string) (*domain.PurchaseReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.ensure(userID, username)
	u.Balance -= cost
	s := l.record(userID, planDays, remnawaveID)
	return &domain.PurchaseReceipt{Subscription: *s, Charged: cost, NewBalance: u.Balance}, nil
}

type stubProvisioner struct {
	id  string
	err error
}

func (p stubProvisioner) CreateSubscription(context.Context, int64, int) (string, error) {
	return p.id, p.err
}

type noChannel struct{}

func (noChannel) GetChatMember(context.Context, *bot.GetChatMemberParams) (*models.ChatMember, error) {
	return nil, nil
}

type testEnv struct {
	h      *Handler
	api    *fakeAPI
	ledger *memLedger
}

func newTestEnv(t *testing.T, provisioner service.Provisioner) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AdminIDs:       []int64{1},
		PlanDays:       30,
		PlanCost:       299,
		CurrencySymbol: "₽",
	}
	api := &fakeAPI{}
	ledger := newMemLedger()
	gate := service.NewMembershipGate(noChannel{}, cfg.MainChannel)

	h := New(Deps{
		API:          api,
		Cfg:          cfg,
		Accounts:     service.NewAccountService(ledger, gate),
		Purchases:    service.NewPurchaseService(ledger, gate, provisioner, cfg.Plan()),
		AdminBalance: service.NewAdminBalanceService(ledger, cfg, service.NewMemoryDialogStore()),
		OpsLog:       telegram.NewOpsLogger(api, cfg),
	})
	return &testEnv{h: h, api: api, ledger: ledger}
}

func senderCtx(id int64, username string, admin bool) context.Context {
	return middleware.WithSender(context.Background(), &middleware.Sender{ID: id, Username: username, ChatID: id, IsAdmin: admin})
}

func textUpdate(text string) *models.Update {
	return &models.Update{Message: &models.Message{Text: text}}
}

func callbackUpdate(data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{ID: "cb", Data: data}}
}

func TestStartCreatesAccount(t *testing.T) {
	env := newTestEnv(t, stubProvisioner{})
	ctx := senderCtx(555, "alice", false)

	env.h.handleStart(ctx, nil, textUpdate("/start"))

	assert.Equal(t, "Привет, @alice!\nВаш баланс: 0₽", env.api.lastText(t))
	balance, err := env.ledger.GetBalance(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	require.Contains(t, env.ledger.users, int64(555))
	assert.Equal(t, "alice", env.ledger.users[555].Username)
}

func TestStartTextAlias(t *testing.T) {
	env := newTestEnv(t, stubProvisioner{})
	env.h.HandleText(senderCtx(7, "", false), nil, textUpdate("  СТАРТ "))
	assert.Equal(t, "Привет, @7!\nВаш баланс: 0₽", env.api.lastText(t))
}

func TestBuyCompleted(t *testing.T) {
	env := newTestEnv(t, stubProvisioner{id: "abc-1"})
	ctx := senderCtx(555, "alice", false)
	_, err := env.ledger.AdjustBalance(ctx, 555, 299, "alice")
	require.NoError(t, err)

	env.h.handleBuy(ctx, nil, callbackUpdate("buy_plan"))

	assert.Equal(t, "Покупка успешна ✅\nСписано: 299₽\nПериод: 30 дней\nID в панели: abc-1", env.api.lastText(t))
	assert.Len(t, env.api.answers, 1)

	balance, _ := env.ledger.GetBalance(ctx, 555)
	assert.Equal(t, int64(0), balance)
	subs, _ := env.ledger.ListSubscriptions(ctx, 555)
	require.Len(t, subs, 1)
	assert.Equal(t, "abc-1", subs[0].RemnawaveID)
}

func TestBuyInsufficientFunds(t *testing.T) {
	env := newTestEnv(t, stubProvisioner{id: "abc-1"})
	ctx := senderCtx(555, "alice", false)
	_, err := env.ledger.AdjustBalance(ctx, 555, 100, "alice")
	require.NoError(t, err)

	env.h.handleBuy(ctx, nil, callbackUpdate("buy_plan"))

	assert.Equal(t, "Недостаточно средств. Стоимость 299₽, ваш баланс 100₽", env.api.lastText(t))
	balance, _ := env.ledger.GetBalance(ctx, 555)
	assert.Equal(t, int64(100), balance)
	assert.Empty(t, env.ledger.subs[555])
}

func TestBuyProvisionFailed(t *testing.T) {
	env := newTestEnv(t, stubProvisioner{err: &service.ProvisionError{Variant: "userExternalId", StatusCode: 503, Detail: "Service Unavailable"}})
	ctx := senderCtx(555, "alice", false)
	_, err := env.ledger.AdjustBalance(ctx, 555, 500, "alice")
	require.NoError(t, err)

	env.h.handleBuy(ctx, nil, callbackUpdate("buy_plan"))

	assert.Equal(t, "Ошибка при создании подписки в Remnawave: HTTP 503: Service Unavailable", env.api.lastText(t))
	balance, _ := env.ledger.GetBalance(ctx, 555)
	assert.Equal(t, int64(500), balance)
}

func TestAdminBalanceDialogue(t *testing.T) {
	env := newTestEnv(t, stubProvisioner{})
	admin := senderCtx(1, "root", true)
	_, err := env.ledger.AdjustBalance(admin, 555, 299, "alice")
	require.NoError(t, err)

	env.h.handleAdminBalance(admin, nil, callbackUpdate("admin_balance"))
	assert.Equal(t, msgPromptTarget, env.api.lastText(t))

	env.h.HandleText(admin, nil, textUpdate("abc"))
	assert.Equal(t, msgInvalidTarget, env.api.lastText(t))

	env.h.HandleText(admin, nil, textUpdate("555"))
	assert.Equal(t, "Текущий баланс пользователя 555: 299₽\nВведите сумму изменения, например +500 или -200", env.api.lastText(t))

	env.h.HandleText(admin, nil, textUpdate("-50"))
	assert.Equal(t, "Баланс пользователя 555 изменён на -50₽. Текущий баланс: 249₽", env.api.lastText(t))

	balance, _ := env.ledger.GetBalance(admin, 555)
	assert.Equal(t, int64(249), balance)
}

func TestAdminCommandRequiresRights(t *testing.T) {
	env := newTestEnv(t, stubProvisioner{})

	env.h.handleAdmin(senderCtx(2, "bob", false), nil, textUpdate("/admin"))
	assert.Equal(t, msgNoRights, env.api.lastText(t))

	env.h.handleAdminBalance(senderCtx(2, "bob", false), nil, callbackUpdate("admin_balance"))
	require.Len(t, env.api.answers, 1)
	assert.True(t, env.api.answers[0].ShowAlert)
}

func TestSubscriptionsList(t *testing.T) {
	assert.Equal(t, msgNoSubscriptions, subscriptionsList(nil))

	got := subscriptionsList([]domain.Subscription{
		{ID: 2, PlanDays: 30, Status: domain.SubscriptionStatusActive},
		{ID: 1, PlanDays: 30, Status: domain.SubscriptionStatusActive, RemnawaveID: "abc-1"},
	})
	assert.Equal(t, "Ваши подписки:\n#2 • 30 дн. • active • remnawave_id=-\n#1 • 30 дн. • active • remnawave_id=abc-1", got)
}
