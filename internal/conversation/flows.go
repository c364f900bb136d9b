package conversation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"household-ledger/internal/models"
	"household-ledger/internal/storage"
)

// Ledger is the part of the store the flows write to and search.
type Ledger interface {
	CreateTransaction(ctx context.Context, p models.NewTransaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id, userID int64, u models.TransactionUpdate) (*models.Transaction, error)
	SearchTransactions(ctx context.Context, f storage.TransactionFilter) ([]models.Transaction, error)

	CreatePlan(ctx context.Context, p models.NewPlan) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id, userID int64, u models.PlanUpdate) (*models.Plan, error)
	SearchPlans(ctx context.Context, f storage.PlanFilter) ([]models.Plan, error)

	CreatePurchase(ctx context.Context, p models.NewPurchase) (*models.Purchase, error)
	UpdatePurchase(ctx context.Context, id, userID int64, u models.PurchaseUpdate) (*models.Purchase, error)
	SearchPurchases(ctx context.Context, f storage.PurchaseFilter) ([]models.Purchase, error)
}

const (
	FlowAddExpense    = "add_expense"
	FlowAddIncome     = "add_income"
	FlowAddPlan       = "add_plan"
	FlowAddSharedPlan = "add_shared_plan"
	FlowAddPurchase   = "add_purchase"
)

const (
	EntityExpense  = "expense"
	EntityIncome   = "income"
	EntityPlan     = "plan"
	EntityPurchase = "purchase"
)

// KeyID holds the record id seeded into edit flows.
const KeyID = "id"

// EditFields lists the editable fields per entity, in menu order.
var EditFields = map[string][]string{
	EntityExpense:  {"amount", "category", "description"},
	EntityIncome:   {"amount", "category", "description"},
	EntityPlan:     {"title", "description", "date", "time", "category"},
	EntityPurchase: {"name", "cost", "priority", "date", "notes"},
}

// SearchModes lists the search flows per entity, in menu order.
var SearchModes = map[string][]string{
	EntityExpense:  {"text", "category", "amount", "date"},
	EntityIncome:   {"text", "category", "amount", "date"},
	EntityPlan:     {"text", "category", "date", "shared"},
	EntityPurchase: {"text", "priority", "cost", "status"},
}

// EditFlow names the single-step flow replacing one field of an entity.
func EditFlow(entity, field string) string {
	return "edit_" + entity + "_" + field
}

// SearchFlow names the search flow for an entity and mode.
func SearchFlow(entity, mode string) string {
	return "search_" + entity + "_" + mode
}

// EntityKind maps the transaction entities to their kind.
func EntityKind(entity string) (models.Kind, bool) {
	switch entity {
	case EntityExpense:
		return models.KindExpense, true
	case EntityIncome:
		return models.KindIncome, true
	}
	return "", false
}

type catalog struct {
	ledger Ledger
	today  func() time.Time
}

// Catalog returns every add, edit and search flow over ledger. today
// resolves relative dates such as «сегодня».
func Catalog(ledger Ledger, today func() time.Time) []Flow {
	c := &catalog{ledger: ledger, today: today}
	flows := []Flow{
		c.addTransaction(FlowAddExpense, models.KindExpense),
		c.addTransaction(FlowAddIncome, models.KindIncome),
		c.addPlan(FlowAddPlan),
		c.addPlan(FlowAddSharedPlan),
		c.addPurchase(),
	}
	flows = append(flows, c.editTransaction(EntityExpense, models.KindExpense)...)
	flows = append(flows, c.editTransaction(EntityIncome, models.KindIncome)...)
	flows = append(flows, c.editPlan()...)
	flows = append(flows, c.editPurchase()...)
	flows = append(flows, c.searchTransactions(EntityExpense, models.KindExpense)...)
	flows = append(flows, c.searchTransactions(EntityIncome, models.KindIncome)...)
	flows = append(flows, c.searchPlans()...)
	flows = append(flows, c.searchPurchases()...)
	return flows
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func decimalField(data map[string]string, key string) (*decimal.Decimal, error) {
	s := data[key]
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q: %w", key, s, err)
	}
	return &d, nil
}

func dateField(data map[string]string, key string) (*time.Time, error) {
	s := data[key]
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q: %w", key, s, err)
	}
	return &d, nil
}

func idField(data map[string]string) (int64, error) {
	id, err := strconv.ParseInt(data[KeyID], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad record id %q: %w", data[KeyID], err)
	}
	return id, nil
}

func kindLabel(kind models.Kind) string {
	if kind == models.KindIncome {
		return "дохода"
	}
	return "расхода"
}

func (c *catalog) addTransaction(name string, kind models.Kind) Flow {
	cats := models.CategoryNames(models.CategoriesFor(kind))
	return Flow{
		Name: name,
		Steps: []Step{
			{Key: "amount", Prompt: "💰 Введите сумму " + kindLabel(kind) + ":", Parse: Amount},
			{Key: "category", Prompt: "📂 Выберите категорию:", Options: cats, Parse: OneOf(cats)},
			{Key: "description", Prompt: "📝 Введите описание (или «-» чтобы пропустить):", Parse: OptionalText},
		},
		Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
			amount, err := decimalField(data, "amount")
			if err != nil {
				return nil, err
			}
			return c.ledger.CreateTransaction(ctx, models.NewTransaction{
				UserID:      userID,
				Kind:        kind,
				Amount:      *amount,
				Category:    data["category"],
				Description: optional(data["description"]),
			})
		},
	}
}

func (c *catalog) addPlan(name string) Flow {
	cats := models.CategoryNames(models.PlanCategories)
	steps := []Step{
		{Key: "title", Prompt: "📋 Введите название плана:", Parse: Text},
		{Key: "description", Prompt: "📝 Введите описание (или «-» чтобы пропустить):", Parse: OptionalText},
		{Key: "date", Prompt: "📅 Введите дату (ГГГГ-ММ-ДД, «сегодня» или «завтра»):", Options: []string{"сегодня", "завтра"}, Parse: DateParser(c.today)},
		{Key: "time", Prompt: "⏰ Введите время ЧЧ:ММ (или «-» без времени):", Parse: OptionalTime},
		{Key: "category", Prompt: "📂 Выберите категорию:", Options: cats, Parse: OneOf(cats)},
		{Key: "shared", Prompt: "👥 Сделать план общим? (да/нет)", Options: []string{"да", "нет"}, Parse: YesNo},
	}
	var seed map[string]string
	if name == FlowAddSharedPlan {
		seed = map[string]string{"shared": "true"}
	}
	return Flow{
		Name:  name,
		Steps: steps,
		Seed:  seed,
		Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
			day, err := dateField(data, "date")
			if err != nil {
				return nil, err
			}
			return c.ledger.CreatePlan(ctx, models.NewPlan{
				UserID:      userID,
				Title:       data["title"],
				Description: optional(data["description"]),
				Date:        *day,
				Time:        optional(data["time"]),
				Category:    data["category"],
				Shared:      data["shared"] == "true",
			})
		},
	}
}

func (c *catalog) addPurchase() Flow {
	return Flow{
		Name: FlowAddPurchase,
		Steps: []Step{
			{Key: "name", Prompt: "🛍 Введите название покупки:", Parse: Text},
			{Key: "cost", Prompt: "💰 Введите примерную стоимость:", Parse: Amount},
			{Key: "priority", Prompt: "⚡ Выберите приоритет:", Options: PriorityLabels, Parse: Priority},
			{Key: "date", Prompt: "📅 Введите желаемую дату покупки (ГГГГ-ММ-ДД или «-»):", Parse: OptionalDateParser(c.today)},
			{Key: "notes", Prompt: "📝 Введите заметки (или «-» чтобы пропустить):", Parse: OptionalText},
		},
		Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
			cost, err := decimalField(data, "cost")
			if err != nil {
				return nil, err
			}
			target, err := dateField(data, "date")
			if err != nil {
				return nil, err
			}
			return c.ledger.CreatePurchase(ctx, models.NewPurchase{
				UserID:     userID,
				ItemName:   data["name"],
				Cost:       *cost,
				Priority:   models.Priority(data["priority"]),
				TargetDate: target,
				Notes:      optional(data["notes"]),
			})
		},
	}
}

// editStep builds a one-step flow that applies the parsed value.
func editStep(name string, step Step, apply func(ctx context.Context, id, userID int64, value string) (any, error)) Flow {
	step.Key = "value"
	return Flow{
		Name:  name,
		Steps: []Step{step},
		Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
			id, err := idField(data)
			if err != nil {
				return nil, err
			}
			return apply(ctx, id, userID, data["value"])
		},
	}
}

func (c *catalog) editTransaction(entity string, kind models.Kind) []Flow {
	cats := models.CategoryNames(models.CategoriesFor(kind))
	update := func(u func(v string) (models.TransactionUpdate, error)) func(context.Context, int64, int64, string) (any, error) {
		return func(ctx context.Context, id, userID int64, v string) (any, error) {
			upd, err := u(v)
			if err != nil {
				return nil, err
			}
			return c.ledger.UpdateTransaction(ctx, id, userID, upd)
		}
	}
	return []Flow{
		editStep(EditFlow(entity, "amount"),
			Step{Prompt: "💰 Введите новую сумму:", Parse: Amount},
			update(func(v string) (models.TransactionUpdate, error) {
				d, err := decimal.NewFromString(v)
				return models.TransactionUpdate{Amount: &d}, err
			})),
		editStep(EditFlow(entity, "category"),
			Step{Prompt: "📂 Выберите новую категорию:", Options: cats, Parse: OneOf(cats)},
			update(func(v string) (models.TransactionUpdate, error) {
				return models.TransactionUpdate{Category: &v}, nil
			})),
		editStep(EditFlow(entity, "description"),
			Step{Prompt: "📝 Введите новое описание (или «-» чтобы очистить):", Parse: OptionalText},
			update(func(v string) (models.TransactionUpdate, error) {
				return models.TransactionUpdate{Description: &v}, nil
			})),
	}
}

func (c *catalog) editPlan() []Flow {
	cats := models.CategoryNames(models.PlanCategories)
	update := func(u func(v string) models.PlanUpdate) func(context.Context, int64, int64, string) (any, error) {
		return func(ctx context.Context, id, userID int64, v string) (any, error) {
			return c.ledger.UpdatePlan(ctx, id, userID, u(v))
		}
	}
	return []Flow{
		editStep(EditFlow(EntityPlan, "title"),
			Step{Prompt: "📋 Введите новое название:", Parse: Text},
			update(func(v string) models.PlanUpdate { return models.PlanUpdate{Title: &v} })),
		editStep(EditFlow(EntityPlan, "description"),
			Step{Prompt: "📝 Введите новое описание (или «-» чтобы очистить):", Parse: OptionalText},
			update(func(v string) models.PlanUpdate { return models.PlanUpdate{Description: &v} })),
		editStep(EditFlow(EntityPlan, "date"),
			Step{Prompt: "📅 Введите новую дату (ГГГГ-ММ-ДД, «сегодня» или «завтра»):", Options: []string{"сегодня", "завтра"}, Parse: DateParser(c.today)},
			func(ctx context.Context, id, userID int64, v string) (any, error) {
				d, err := time.Parse(models.DateLayout, v)
				if err != nil {
					return nil, err
				}
				return c.ledger.UpdatePlan(ctx, id, userID, models.PlanUpdate{Date: &d})
			}),
		editStep(EditFlow(EntityPlan, "time"),
			Step{Prompt: "⏰ Введите новое время ЧЧ:ММ (или «-» чтобы убрать):", Parse: OptionalTime},
			update(func(v string) models.PlanUpdate { return models.PlanUpdate{Time: &v} })),
		editStep(EditFlow(EntityPlan, "category"),
			Step{Prompt: "📂 Выберите новую категорию:", Options: cats, Parse: OneOf(cats)},
			update(func(v string) models.PlanUpdate { return models.PlanUpdate{Category: &v} })),
	}
}

func (c *catalog) editPurchase() []Flow {
	update := func(u func(v string) (models.PurchaseUpdate, error)) func(context.Context, int64, int64, string) (any, error) {
		return func(ctx context.Context, id, userID int64, v string) (any, error) {
			upd, err := u(v)
			if err != nil {
				return nil, err
			}
			return c.ledger.UpdatePurchase(ctx, id, userID, upd)
		}
	}
	return []Flow{
		editStep(EditFlow(EntityPurchase, "name"),
			Step{Prompt: "🛍 Введите новое название:", Parse: Text},
			update(func(v string) (models.PurchaseUpdate, error) {
				return models.PurchaseUpdate{ItemName: &v}, nil
			})),
		editStep(EditFlow(EntityPurchase, "cost"),
			Step{Prompt: "💰 Введите новую стоимость:", Parse: Amount},
			update(func(v string) (models.PurchaseUpdate, error) {
				d, err := decimal.NewFromString(v)
				return models.PurchaseUpdate{Cost: &d}, err
			})),
		editStep(EditFlow(EntityPurchase, "priority"),
			Step{Prompt: "⚡ Выберите новый приоритет:", Options: PriorityLabels, Parse: Priority},
			update(func(v string) (models.PurchaseUpdate, error) {
				p := models.Priority(v)
				return models.PurchaseUpdate{Priority: &p}, nil
			})),
		editStep(EditFlow(EntityPurchase, "date"),
			Step{Prompt: "📅 Введите новую дату (ГГГГ-ММ-ДД или «-» чтобы убрать):", Parse: OptionalDateParser(c.today)},
			update(func(v string) (models.PurchaseUpdate, error) {
				if v == "" {
					return models.PurchaseUpdate{TargetDate: &time.Time{}}, nil
				}
				d, err := time.Parse(models.DateLayout, v)
				return models.PurchaseUpdate{TargetDate: &d}, err
			})),
		editStep(EditFlow(EntityPurchase, "notes"),
			Step{Prompt: "📝 Введите новые заметки (или «-» чтобы очистить):", Parse: OptionalText},
			update(func(v string) (models.PurchaseUpdate, error) {
				return models.PurchaseUpdate{Notes: &v}, nil
			})),
	}
}

var (
	minStep = Step{Key: "min", Prompt: "⬇️ Минимальная сумма (или «-» без ограничения):", Parse: OptionalAmount}
	maxStep = Step{Key: "max", Prompt: "⬆️ Максимальная сумма (или «-» без ограничения):", Parse: OptionalAmount}
)

func amountRange(data map[string]string) (lo, hi *decimal.Decimal, err error) {
	if lo, err = decimalField(data, "min"); err != nil {
		return nil, nil, err
	}
	if hi, err = decimalField(data, "max"); err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && hi.LessThan(*lo) {
		return nil, nil, InputError("❌ Максимум не может быть меньше минимума")
	}
	return lo, hi, nil
}

func (c *catalog) searchTransactions(entity string, kind models.Kind) []Flow {
	cats := models.CategoryNames(models.CategoriesFor(kind))
	search := func(f storage.TransactionFilter) CommitFunc {
		return func(ctx context.Context, userID int64, data map[string]string) (any, error) {
			f.UserID = userID
			f.Kind = kind
			return c.ledger.SearchTransactions(ctx, f)
		}
	}
	return []Flow{
		{
			Name:  SearchFlow(entity, "text"),
			Steps: []Step{{Key: "text", Prompt: "🔍 Введите текст для поиска в описании:", Parse: Text}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return search(storage.TransactionFilter{Text: data["text"]})(ctx, userID, data)
			},
		},
		{
			Name:  SearchFlow(entity, "category"),
			Steps: []Step{{Key: "category", Prompt: "📂 Выберите категорию:", Options: cats, Parse: OneOf(cats)}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return search(storage.TransactionFilter{Category: data["category"]})(ctx, userID, data)
			},
		},
		{
			Name:  SearchFlow(entity, "amount"),
			Steps: []Step{minStep, maxStep},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				lo, hi, err := amountRange(data)
				if err != nil {
					return nil, err
				}
				return search(storage.TransactionFilter{MinAmount: lo, MaxAmount: hi})(ctx, userID, data)
			},
		},
		{
			Name:  SearchFlow(entity, "date"),
			Steps: []Step{{Key: "when", Prompt: "📅 Введите «сегодня», «неделя», «месяц» или дату ГГГГ-ММ-ДД:", Options: DateFilterLabels, Parse: DateFilter}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				var f storage.TransactionFilter
				if p := models.Period(data["when"]); p.Valid() {
					f.Period = p
				} else {
					on, err := dateField(data, "when")
					if err != nil {
						return nil, err
					}
					f.On = on
				}
				return search(f)(ctx, userID, data)
			},
		},
	}
}

func (c *catalog) searchPlans() []Flow {
	cats := models.CategoryNames(models.PlanCategories)
	return []Flow{
		{
			Name:  SearchFlow(EntityPlan, "text"),
			Steps: []Step{{Key: "text", Prompt: "🔍 Введите текст для поиска в названии и описании:", Parse: Text}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return c.ledger.SearchPlans(ctx, storage.PlanFilter{ViewerID: userID, Text: data["text"]})
			},
		},
		{
			Name:  SearchFlow(EntityPlan, "category"),
			Steps: []Step{{Key: "category", Prompt: "📂 Выберите категорию:", Options: cats, Parse: OneOf(cats)}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return c.ledger.SearchPlans(ctx, storage.PlanFilter{ViewerID: userID, Category: data["category"]})
			},
		},
		{
			Name: SearchFlow(EntityPlan, "date"),
			Steps: []Step{
				{Key: "from", Prompt: "📅 Начальная дата ГГГГ-ММ-ДД (или «-» без ограничения):", Parse: OptionalDateParser(c.today)},
				{Key: "to", Prompt: "📅 Конечная дата ГГГГ-ММ-ДД (или «-» без ограничения):", Parse: OptionalDateParser(c.today)},
			},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				from, err := dateField(data, "from")
				if err != nil {
					return nil, err
				}
				to, err := dateField(data, "to")
				if err != nil {
					return nil, err
				}
				if from != nil && to != nil && to.Before(*from) {
					return nil, InputError("❌ Конечная дата не может быть раньше начальной")
				}
				return c.ledger.SearchPlans(ctx, storage.PlanFilter{ViewerID: userID, From: from, To: to})
			},
		},
		{
			Name: SearchFlow(EntityPlan, "shared"),
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return c.ledger.SearchPlans(ctx, storage.PlanFilter{ViewerID: userID, SharedOnly: true})
			},
		},
	}
}

func (c *catalog) searchPurchases() []Flow {
	return []Flow{
		{
			Name:  SearchFlow(EntityPurchase, "text"),
			Steps: []Step{{Key: "text", Prompt: "🔍 Введите текст для поиска в названии и заметках:", Parse: Text}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return c.ledger.SearchPurchases(ctx, storage.PurchaseFilter{UserID: userID, Text: data["text"]})
			},
		},
		{
			Name:  SearchFlow(EntityPurchase, "priority"),
			Steps: []Step{{Key: "priority", Prompt: "⚡ Выберите приоритет:", Options: PriorityLabels, Parse: Priority}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return c.ledger.SearchPurchases(ctx, storage.PurchaseFilter{UserID: userID, Priority: models.Priority(data["priority"])})
			},
		},
		{
			Name: SearchFlow(EntityPurchase, "cost"),
			Steps: []Step{
				{Key: "min", Prompt: "⬇️ Минимальная стоимость (или «-» без ограничения):", Parse: OptionalAmount},
				{Key: "max", Prompt: "⬆️ Максимальная стоимость (или «-» без ограничения):", Parse: OptionalAmount},
			},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				lo, hi, err := amountRange(data)
				if err != nil {
					return nil, err
				}
				return c.ledger.SearchPurchases(ctx, storage.PurchaseFilter{UserID: userID, MinCost: lo, MaxCost: hi})
			},
		},
		{
			Name:  SearchFlow(EntityPurchase, "status"),
			Steps: []Step{{Key: "status", Prompt: "📋 Выберите статус:", Options: StatusLabels, Parse: PurchaseStatus}},
			Commit: func(ctx context.Context, userID int64, data map[string]string) (any, error) {
				return c.ledger.SearchPurchases(ctx, storage.PurchaseFilter{UserID: userID, Status: models.PurchaseStatus(data["status"])})
			},
		},
	}
}
