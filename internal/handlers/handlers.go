package handlers

import (
	"context"
	"errors"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"household-ledger/internal/auth"
	"household-ledger/internal/conversation"
	"household-ledger/internal/format"
	"household-ledger/internal/models"
	"household-ledger/internal/storage"
)

const (
	// NotFoundMessage answers edits and deletes of missing or foreign records.
	NotFoundMessage = "❌ Запись не найдена или нет доступа"
	// FailureMessage answers storage failures.
	FailureMessage = "❌ Произошла ошибка. Попробуйте еще раз."

	cancelHint = "\n\nДля отмены отправьте «отмена» или «cancel»"
)

// Update is one normalized user action delivered by the transport.
type Update struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Intent   string `json:"intent"`
	Arg      string `json:"arg,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Option is a suggested next action; the transport renders it as a button.
type Option struct {
	Label  string `json:"label"`
	Intent string `json:"intent"`
	Arg    string `json:"arg,omitempty"`
}

// Reply is the response to one Update. State is "flow:step" while a flow
// is active and empty otherwise.
type Reply struct {
	Messages []string `json:"messages"`
	Options  []Option `json:"options,omitempty"`
	State    string   `json:"state,omitempty"`
}

// Options tunes reply sizes.
type Options struct {
	RecentLimit int
	ChunkLimit  int
}

type turn struct {
	Update
	user *models.User
}

type intentFunc func(ctx context.Context, t *turn) Reply

// Handlers dispatches intents for the household.
type Handlers struct {
	db        *storage.DB
	household *auth.AllowList
	engine    *conversation.Engine
	opts      Options
	intents   map[string]intentFunc

	turns    metric.Int64Counter
	rejected metric.Int64Counter
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, household *auth.AllowList, engine *conversation.Engine, opts Options) *Handlers {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 10
	}
	if opts.ChunkLimit <= 0 {
		opts.ChunkLimit = format.MaxMessageLength
	}
	meter := otel.Meter("household-ledger/handlers")
	turns, err := meter.Int64Counter("handlers.turns", metric.WithDescription("Authorized turns by intent"))
	if err != nil {
		log.Printf("Metric error: %v", err)
	}
	rejected, err := meter.Int64Counter("handlers.rejected", metric.WithDescription("Turns from callers outside the household"))
	if err != nil {
		log.Printf("Metric error: %v", err)
	}

	h := &Handlers{db: db, household: household, engine: engine, opts: opts, turns: turns, rejected: rejected}
	h.intents = map[string]intentFunc{
		"start":            h.start,
		"help":             h.help,
		"cancel":           h.cancel,
		"text":             h.text,
		"add_expense":      h.startFlow(conversation.FlowAddExpense),
		"add_income":       h.startFlow(conversation.FlowAddIncome),
		"add_plan":         h.startFlow(conversation.FlowAddPlan),
		"add_shared_plan":  h.startFlow(conversation.FlowAddSharedPlan),
		"add_purchase":     h.startFlow(conversation.FlowAddPurchase),
		"search":           h.search,
		"last":             h.last,
		"recent_all":       h.recentAll,
		"plans_today":      h.plansToday,
		"plans_shared":     h.plansShared,
		"purchases":        h.purchases,
		"manage":           h.manage,
		"select":           h.selectRecord,
		"edit":             h.edit,
		"delete":           h.delete,
		"confirm_delete":   h.confirmDelete,
		"purchase_bought":  h.purchaseBought,
		"toggle_shared":    h.toggleShared,
		"weekly":           h.weekly,
		"shared_today":     h.sharedToday,
		"stats_my":         h.statsMy,
		"stats_partner":    h.statsPartner,
		"stats_combined":   h.statsCombined,
		"stats_comparison": h.statsComparison,
		"stats_categories": h.statsCategories,
		"stats_today":      h.statsToday,
	}
	return h
}

// Handle processes one update to completion.
func (h *Handlers) Handle(ctx context.Context, u Update) Reply {
	if !h.household.IsAllowed(u.UserID) {
		log.Printf("Rejected user %d (%s)", u.UserID, u.Username)
		if h.rejected != nil {
			h.rejected.Add(ctx, 1)
		}
		return Reply{Messages: []string{auth.RejectionMessage}}
	}
	if h.turns != nil {
		h.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", u.Intent)))
	}

	user, err := h.db.UpsertUser(ctx, u.UserID, u.Username, u.FullName)
	if err != nil {
		log.Printf("UpsertUser error: %v", err)
		return h.withState(u.UserID, Reply{Messages: []string{FailureMessage}})
	}

	fn, ok := h.intents[u.Intent]
	if !ok {
		return h.withState(u.UserID, Reply{
			Messages: []string{"🤔 Неизвестная команда. Используйте меню или /help"},
			Options:  mainMenu,
		})
	}
	return h.withState(u.UserID, fn(ctx, &turn{Update: u, user: user}))
}

func (h *Handlers) withState(userID int64, r Reply) Reply {
	if flow, step, ok := h.engine.Current(userID); ok {
		r.State = flow + ":" + step
	}
	return r
}

// storageFailure maps a store error to a reply. op names the call in the log.
func storageFailure(op string, err error) Reply {
	if errors.Is(err, storage.ErrNotFound) {
		return Reply{Messages: []string{NotFoundMessage}}
	}
	log.Printf("%s error: %v", op, err)
	return Reply{Messages: []string{FailureMessage}}
}

func message(lines ...string) Reply {
	return Reply{Messages: []string{strings.Join(lines, "\n")}}
}

var mainMenu = []Option{
	{Label: "💰 Добавить расход", Intent: "add_expense"},
	{Label: "💵 Добавить доход", Intent: "add_income"},
	{Label: "📅 Добавить план", Intent: "add_plan"},
	{Label: "🛒 Добавить покупку", Intent: "add_purchase"},
	{Label: "📊 Моя статистика", Intent: "stats_my"},
	{Label: "👤 Данные партнера", Intent: "stats_partner"},
	{Label: "👫 Общие финансы", Intent: "stats_combined"},
	{Label: "📋 Планы на сегодня", Intent: "plans_today"},
	{Label: "👥 Общие планы", Intent: "plans_shared"},
	{Label: "📋 Мои покупки", Intent: "purchases"},
	{Label: "✏️ Управление записями", Intent: "manage"},
	{Label: "🔍 Поиск", Intent: "search"},
}

func (h *Handlers) start(_ context.Context, t *turn) Reply {
	return Reply{
		Messages: []string{"👋 Привет, " + t.user.DisplayName() + "!\n\n" + welcomeText},
		Options:  mainMenu,
	}
}

func (h *Handlers) help(context.Context, *turn) Reply {
	return Reply{Messages: []string{helpText}, Options: mainMenu}
}

const welcomeText = `Я твой личный финансовый помощник и планировщик для двоих!

📌 <b>Основные возможности:</b>
• 💰 Учет расходов и доходов
• 📊 Статистика и аналитика
• 👥 Общие финансы и сравнение
• 📅 Планировщик с напоминаниями
• 🛒 Список желаемых покупок

<b>Для отмены операции</b> в любой момент отправьте "отмена" или "cancel"

Используй кнопки ниже или команды:
/shared - общие расходы сегодня
/last - последние транзакции
/weekly - недельная сводка
/help - справка по командам`

const helpText = `📚 <b>Справка по командам:</b>

<b>Основные команды:</b>
/start - запустить бота
/help - эта справка
/shared - общие расходы сегодня
/last - последние 10 транзакций
/weekly - недельная сводка

<b>Управление записями:</b>
✏️ Редактировать - изменить запись
🗑️ Удалить - удалить запись (с подтверждением)

<b>Общие планы:</b>
👥 Общие планы - просмотр и создание

<b>Отмена операций:</b>
В любой момент при добавлении/редактировании
отправьте "отмена", "cancel" или "стоп" для возврата в меню`
