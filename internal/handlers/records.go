package handlers

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"household-ledger/internal/conversation"
	"household-ledger/internal/format"
	"household-ledger/internal/models"
)

// Record kinds accepted by manage, select, edit and delete.
const (
	recordTransaction = "transaction"
	recordPlan        = "plan"
	recordPurchase    = "purchase"
)

var fieldLabels = map[string]string{
	"amount":      "Сумма",
	"category":    "Категория",
	"description": "Описание",
	"title":       "Название",
	"date":        "Дата",
	"time":        "Время",
	"name":        "Название",
	"cost":        "Стоимость",
	"priority":    "Приоритет",
	"notes":       "Заметки",
}

// ref is a parsed "<record>:<id>[:<field>]" argument.
type ref struct {
	record string
	id     int64
	field  string
}

func (r ref) String() string {
	return r.record + ":" + strconv.FormatInt(r.id, 10)
}

func parseRef(arg string) (ref, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) < 2 {
		return ref{}, fmt.Errorf("malformed reference %q", arg)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return ref{}, fmt.Errorf("malformed id in %q", arg)
	}
	r := ref{record: parts[0], id: id}
	if len(parts) == 3 {
		r.field = parts[2]
	}
	switch r.record {
	case recordTransaction, recordPlan, recordPurchase:
		return r, nil
	}
	return ref{}, fmt.Errorf("unknown record %q", r.record)
}

func badRef() Reply {
	return Reply{Messages: []string{"❌ Некорректная ссылка на запись"}, Options: mainMenu}
}

// owned is one of the caller's records, rendered with its id.
type owned struct {
	text string
	// entity selects the edit flows: expense, income, plan or purchase.
	entity string
	extra  []Option
}

func (h *Handlers) ownRecord(ctx context.Context, r ref, userID int64) (owned, error) {
	opts := format.Options{WithID: true}
	switch r.record {
	case recordTransaction:
		tx, err := h.db.GetTransaction(ctx, r.id, userID)
		if err != nil {
			return owned{}, err
		}
		entity := conversation.EntityExpense
		if tx.Kind == models.KindIncome {
			entity = conversation.EntityIncome
		}
		return owned{text: format.Transaction(*tx, opts), entity: entity}, nil
	case recordPlan:
		p, err := h.db.GetOwnPlan(ctx, r.id, userID)
		if err != nil {
			return owned{}, err
		}
		label := "👥 Сделать общим"
		if p.Shared {
			label = "🔒 Сделать личным"
		}
		return owned{
			text:   format.Plan(*p, opts),
			entity: conversation.EntityPlan,
			extra:  []Option{{Label: label, Intent: "toggle_shared", Arg: strconv.FormatInt(p.ID, 10)}},
		}, nil
	default:
		p, err := h.db.GetPurchase(ctx, r.id, userID)
		if err != nil {
			return owned{}, err
		}
		o := owned{text: format.Purchase(*p, opts), entity: conversation.EntityPurchase}
		if p.Status == models.StatusPlanned {
			o.extra = []Option{{Label: "✅ Отметить купленной", Intent: "purchase_bought", Arg: strconv.FormatInt(p.ID, 10)}}
		}
		return o, nil
	}
}

func (h *Handlers) last(ctx context.Context, t *turn) Reply {
	txs, err := h.db.RecentTransactions(ctx, t.UserID, h.opts.RecentLimit)
	if err != nil {
		return storageFailure("RecentTransactions", err)
	}
	if len(txs) == 0 {
		return message("📊 У вас пока нет транзакций")
	}
	header := fmt.Sprintf("📊 <b>Последние %d транзакций:</b>\n", len(txs))
	return Reply{Messages: format.Chunk(header, format.Transactions(txs, format.Options{}), h.opts.ChunkLimit)}
}

func (h *Handlers) recentAll(ctx context.Context, t *turn) Reply {
	txs, err := h.db.RecentTransactions(ctx, t.UserID, h.opts.RecentLimit)
	if err != nil {
		return storageFailure("RecentTransactions", err)
	}
	plans, err := h.db.RecentPlans(ctx, t.UserID, h.opts.RecentLimit)
	if err != nil {
		return storageFailure("RecentPlans", err)
	}
	purchases, err := h.db.RecentPurchases(ctx, t.UserID, h.opts.RecentLimit)
	if err != nil {
		return storageFailure("RecentPurchases", err)
	}
	if len(txs)+len(plans)+len(purchases) == 0 {
		return message("📭 Записей пока нет")
	}

	var entries []string
	if len(txs) > 0 {
		entries = append(entries, "💰 <b>Транзакции:</b>")
		entries = append(entries, format.Transactions(txs, format.Options{WithID: true})...)
	}
	if len(plans) > 0 {
		entries = append(entries, "📅 <b>Планы:</b>")
		entries = append(entries, format.Plans(plans, format.Options{WithID: true, ViewerID: t.UserID})...)
	}
	if len(purchases) > 0 {
		entries = append(entries, "🛒 <b>Покупки:</b>")
		entries = append(entries, format.Purchases(purchases, format.Options{WithID: true})...)
	}
	return Reply{Messages: format.Chunk("🕐 <b>Последние записи</b>\n", entries, h.opts.ChunkLimit)}
}

func (h *Handlers) plansToday(ctx context.Context, t *turn) Reply {
	plans, err := h.db.PlansForDate(ctx, t.UserID, h.db.Today())
	if err != nil {
		return storageFailure("PlansForDate", err)
	}
	if len(plans) == 0 {
		return Reply{Messages: []string{"📅 На сегодня планов нет"}, Options: []Option{{Label: "📅 Добавить план", Intent: "add_plan"}}}
	}
	return Reply{Messages: format.Chunk("📅 <b>Планы на сегодня:</b>\n", format.Plans(plans, format.Options{ViewerID: t.UserID}), h.opts.ChunkLimit)}
}

func (h *Handlers) plansShared(ctx context.Context, t *turn) Reply {
	plans, err := h.db.SharedPlans(ctx, h.db.Today())
	if err != nil {
		return storageFailure("SharedPlans", err)
	}
	add := []Option{{Label: "👥 Создать общий план", Intent: "add_shared_plan"}}
	if len(plans) == 0 {
		return Reply{Messages: []string{"👥 Общих планов пока нет"}, Options: add}
	}
	return Reply{
		Messages: format.Chunk("👥 <b>Общие планы:</b>\n", format.Plans(plans, format.Options{ViewerID: t.UserID}), h.opts.ChunkLimit),
		Options:  add,
	}
}

func purchaseTotal(ps []models.Purchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		total = total.Add(p.Cost)
	}
	return total
}

func (h *Handlers) purchases(ctx context.Context, t *turn) Reply {
	ps, err := h.db.ListPurchases(ctx, t.UserID, models.StatusPlanned)
	if err != nil {
		return storageFailure("ListPurchases", err)
	}
	if len(ps) == 0 {
		return Reply{Messages: []string{"🛒 Список покупок пуст"}, Options: []Option{{Label: "🛒 Добавить покупку", Intent: "add_purchase"}}}
	}
	entries := format.Purchases(ps, format.Options{WithID: true})
	entries = append(entries, "💰 <b>Общая сумма: "+format.Money(purchaseTotal(ps))+"</b>")
	return Reply{Messages: format.Chunk("📋 <b>Ваши планируемые покупки:</b>\n", entries, h.opts.ChunkLimit)}
}

// manage lists the caller's recent records of one kind for selection.
func (h *Handlers) manage(ctx context.Context, t *turn) Reply {
	limit := h.opts.RecentLimit
	var (
		entries []string
		opts    []Option
	)
	pick := func(record string, id int64, label string) {
		opts = append(opts, Option{Label: label, Intent: "select", Arg: ref{record: record, id: id}.String()})
	}

	switch t.Arg {
	case "":
		return Reply{
			Messages: []string{"✏️ <b>Какие записи изменить?</b>"},
			Options: []Option{
				{Label: "💰 Транзакции", Intent: "manage", Arg: recordTransaction},
				{Label: "📅 Планы", Intent: "manage", Arg: recordPlan},
				{Label: "🛒 Покупки", Intent: "manage", Arg: recordPurchase},
			},
		}
	case recordTransaction:
		txs, err := h.db.RecentTransactions(ctx, t.UserID, limit)
		if err != nil {
			return storageFailure("RecentTransactions", err)
		}
		entries = format.Transactions(txs, format.Options{WithID: true})
		for _, tx := range txs {
			pick(recordTransaction, tx.ID, fmt.Sprintf("%s %s %s", format.KindIcon(tx.Kind), tx.Amount.StringFixed(2), tx.Category))
		}
	case recordPlan:
		plans, err := h.db.OwnRecentPlans(ctx, t.UserID, limit)
		if err != nil {
			return storageFailure("OwnRecentPlans", err)
		}
		entries = format.Plans(plans, format.Options{WithID: true})
		for _, p := range plans {
			pick(recordPlan, p.ID, "📅 "+format.Date(p.Date)+" "+p.Title)
		}
	case recordPurchase:
		ps, err := h.db.RecentPurchases(ctx, t.UserID, limit)
		if err != nil {
			return storageFailure("RecentPurchases", err)
		}
		entries = format.Purchases(ps, format.Options{WithID: true})
		for _, p := range ps {
			pick(recordPurchase, p.ID, format.PriorityIcon(p.Priority)+" "+p.ItemName)
		}
	default:
		return badRef()
	}

	if len(entries) == 0 {
		return Reply{Messages: []string{"📭 Записей пока нет"}, Options: mainMenu}
	}
	return Reply{Messages: format.Chunk("✏️ <b>Выберите запись:</b>\n", entries, h.opts.ChunkLimit), Options: opts}
}

func (h *Handlers) selectRecord(ctx context.Context, t *turn) Reply {
	r, err := parseRef(t.Arg)
	if err != nil {
		return badRef()
	}
	rec, err := h.ownRecord(ctx, r, t.UserID)
	if err != nil {
		return storageFailure("select", err)
	}

	var opts []Option
	for _, field := range conversation.EditFields[rec.entity] {
		opts = append(opts, Option{Label: "✏️ " + fieldLabels[field], Intent: "edit", Arg: r.String() + ":" + field})
	}
	opts = append(opts, rec.extra...)
	opts = append(opts, Option{Label: "🗑️ Удалить", Intent: "delete", Arg: r.String()})
	return Reply{Messages: []string{rec.text}, Options: opts}
}

func (h *Handlers) edit(ctx context.Context, t *turn) Reply {
	r, err := parseRef(t.Arg)
	if err != nil || r.field == "" {
		return badRef()
	}
	rec, err := h.ownRecord(ctx, r, t.UserID)
	if err != nil {
		return storageFailure("edit", err)
	}
	if !slices.Contains(conversation.EditFields[rec.entity], r.field) {
		return Reply{Messages: []string{"❌ Это поле нельзя изменить"}, Options: mainMenu}
	}
	seed := map[string]string{conversation.KeyID: strconv.FormatInt(r.id, 10)}
	return h.begin(ctx, t, conversation.EditFlow(rec.entity, r.field), seed)
}

func (h *Handlers) delete(ctx context.Context, t *turn) Reply {
	r, err := parseRef(t.Arg)
	if err != nil {
		return badRef()
	}
	rec, err := h.ownRecord(ctx, r, t.UserID)
	if err != nil {
		return storageFailure("delete", err)
	}
	return Reply{
		Messages: []string{"🗑️ <b>Удалить эту запись?</b>\n\n" + rec.text},
		Options: []Option{
			{Label: "✅ Да, удалить", Intent: "confirm_delete", Arg: r.String()},
			{Label: "❌ Нет", Intent: "select", Arg: r.String()},
		},
	}
}

func (h *Handlers) confirmDelete(ctx context.Context, t *turn) Reply {
	r, err := parseRef(t.Arg)
	if err != nil {
		return badRef()
	}
	switch r.record {
	case recordTransaction:
		err = h.db.DeleteTransaction(ctx, r.id, t.UserID)
	case recordPlan:
		err = h.db.DeletePlan(ctx, r.id, t.UserID)
	case recordPurchase:
		err = h.db.DeletePurchase(ctx, r.id, t.UserID)
	}
	if err != nil {
		return storageFailure("confirm_delete", err)
	}
	return Reply{Messages: []string{"✅ Запись удалена"}, Options: mainMenu}
}

func parseID(arg string) (int64, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) purchaseBought(ctx context.Context, t *turn) Reply {
	id, ok := parseID(t.Arg)
	if !ok {
		return badRef()
	}
	p, err := h.db.MarkPurchaseBought(ctx, id, t.UserID)
	if err != nil {
		return storageFailure("MarkPurchaseBought", err)
	}
	return Reply{Messages: []string{"✅ Покупка отмечена как купленная!\n\n" + format.Purchase(*p, format.Options{})}}
}

func (h *Handlers) toggleShared(ctx context.Context, t *turn) Reply {
	id, ok := parseID(t.Arg)
	if !ok {
		return badRef()
	}
	p, err := h.db.TogglePlanShared(ctx, id, t.UserID)
	if err != nil {
		return storageFailure("TogglePlanShared", err)
	}
	title := "🔒 План теперь личный"
	if p.Shared {
		title = "👥 План теперь общий"
	}
	return Reply{Messages: []string{title + "\n\n" + format.Plan(*p, format.Options{})}}
}
