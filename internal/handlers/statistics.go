package handlers

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"household-ledger/internal/format"
	"household-ledger/internal/models"
	"household-ledger/internal/storage"
)

const weeklyBuckets = 4

var periodOptions = []Option{
	{Label: "📅 Сегодня", Intent: "stats_my", Arg: string(models.PeriodToday)},
	{Label: "📆 Неделя", Intent: "stats_my", Arg: string(models.PeriodWeek)},
	{Label: "🗓️ Месяц", Intent: "stats_my", Arg: string(models.PeriodMonth)},
	{Label: "📊 Всё время", Intent: "stats_my", Arg: string(models.PeriodAll)},
}

func (h *Handlers) statsMy(ctx context.Context, t *turn) Reply {
	if t.Arg == "" {
		return Reply{Messages: []string{"📊 <b>Выберите период:</b>"}, Options: periodOptions}
	}
	period, err := models.ParsePeriod(t.Arg)
	if err != nil {
		return Reply{Messages: []string{"❌ Неизвестный период"}, Options: periodOptions}
	}
	return h.periodReport(ctx, t.UserID, period, "Ваша статистика за "+format.PeriodLabel(period))
}

func (h *Handlers) periodReport(ctx context.Context, userID int64, period models.Period, title string) Reply {
	ids := []int64{userID}
	totals, err := h.db.PeriodTotals(ctx, ids, period)
	if err != nil {
		return storageFailure("PeriodTotals", err)
	}
	if totals.Count == 0 {
		return message("📊 <b>Нет данных за " + format.PeriodLabel(period) + "</b>")
	}
	cats, err := h.db.CategoryTotals(ctx, ids, models.KindExpense, period, 0)
	if err != nil {
		return storageFailure("CategoryTotals", err)
	}
	return Reply{Messages: []string{format.PeriodStats(title, totals, cats)}}
}

func (h *Handlers) partner(t *turn) (int64, bool) {
	id, ok := h.household.Partner(t.UserID)
	if !ok {
		log.Printf("No partner configured for user %d", t.UserID)
	}
	return id, ok
}

func (h *Handlers) statsPartner(ctx context.Context, t *turn) Reply {
	if t.Arg == "" {
		return Reply{
			Messages: []string{"👤 <b>Что посмотреть у партнера?</b>"},
			Options: []Option{
				{Label: "💸 Расходы", Intent: "stats_partner", Arg: "expenses"},
				{Label: "💵 Доходы", Intent: "stats_partner", Arg: "incomes"},
				{Label: "📅 Планы", Intent: "stats_partner", Arg: "plans"},
				{Label: "🛒 Покупки", Intent: "stats_partner", Arg: "purchases"},
				{Label: "📊 Полная статистика", Intent: "stats_partner", Arg: "full"},
			},
		}
	}
	partnerID, ok := h.partner(t)
	if !ok {
		return Reply{Messages: []string{"👤 Партнер не найден"}, Options: mainMenu}
	}

	switch t.Arg {
	case "expenses", "incomes":
		kind, header, empty := models.KindExpense, "💸 <b>Расходы партнера за месяц:</b>\n", "💸 У партнера нет расходов за месяц"
		if t.Arg == "incomes" {
			kind, header, empty = models.KindIncome, "💵 <b>Доходы партнера за месяц:</b>\n", "💵 У партнера нет доходов за месяц"
		}
		txs, err := h.db.ListTransactions(ctx, partnerID, models.PeriodMonth, kind)
		if err != nil {
			return storageFailure("ListTransactions", err)
		}
		if len(txs) == 0 {
			return message(empty)
		}
		total := decimal.Zero
		for _, tx := range txs {
			total = total.Add(tx.Amount)
		}
		entries := append(format.Transactions(txs, format.Options{}), "💰 <b>Итого: "+format.Money(total)+"</b>")
		return Reply{Messages: format.Chunk(header, entries, h.opts.ChunkLimit)}
	case "plans":
		today := h.db.Today()
		plans, err := h.db.SearchPlans(ctx, storage.PlanFilter{ViewerID: t.UserID, OwnerID: partnerID, From: &today})
		if err != nil {
			return storageFailure("SearchPlans", err)
		}
		if len(plans) == 0 {
			return message("📅 У партнера нет общих планов")
		}
		return Reply{Messages: format.Chunk("📅 <b>Общие планы партнера:</b>\n", format.Plans(plans, format.Options{ViewerID: t.UserID}), h.opts.ChunkLimit)}
	case "purchases":
		ps, err := h.db.ListPurchases(ctx, partnerID, models.StatusPlanned)
		if err != nil {
			return storageFailure("ListPurchases", err)
		}
		if len(ps) == 0 {
			return message("🛒 У партнера нет запланированных покупок")
		}
		entries := append(format.Purchases(ps, format.Options{}), "💰 <b>Общая сумма: "+format.Money(purchaseTotal(ps))+"</b>")
		return Reply{Messages: format.Chunk("🛒 <b>Покупки партнера:</b>\n", entries, h.opts.ChunkLimit)}
	case "full":
		return h.periodReport(ctx, partnerID, models.PeriodMonth, "Статистика партнера за месяц")
	}
	return Reply{Messages: []string{"❌ Неизвестный раздел"}, Options: mainMenu}
}

func (h *Handlers) statsCombined(ctx context.Context, t *turn) Reply {
	participants := h.household.Participants()
	switch t.Arg {
	case "":
		return Reply{
			Messages: []string{"👫 <b>Общие финансы:</b>"},
			Options: []Option{
				{Label: "💸 Общие расходы", Intent: "stats_combined", Arg: "expenses"},
				{Label: "💵 Общие доходы", Intent: "stats_combined", Arg: "incomes"},
				{Label: "📂 Категории", Intent: "stats_combined", Arg: "categories"},
				{Label: "📊 Сравнение за месяц", Intent: "stats_combined", Arg: "monthly"},
				{Label: "👥 Общие планы", Intent: "stats_combined", Arg: "plans"},
			},
		}
	case "expenses", "categories":
		report, err := h.db.CategoryComparison(ctx, participants, models.PeriodMonth)
		if err != nil {
			return storageFailure("CategoryComparison", err)
		}
		title, shares := "💸 <b>Общие расходы за месяц:</b>", false
		if t.Arg == "categories" {
			title, shares = "📂 <b>Расходы по категориям:</b>", true
		}
		return Reply{Messages: []string{format.CategoryComparison(title, report, shares)}}
	case "incomes":
		rows, err := h.db.UserTotals(ctx, participants, models.PeriodMonth)
		if err != nil {
			return storageFailure("UserTotals", err)
		}
		return Reply{Messages: []string{format.Incomes(rows)}}
	case "monthly":
		return h.statsComparison(ctx, t)
	case "plans":
		return h.plansShared(ctx, t)
	}
	return Reply{Messages: []string{"❌ Неизвестный раздел"}, Options: mainMenu}
}

func (h *Handlers) statsComparison(ctx context.Context, _ *turn) Reply {
	rows, err := h.db.MonthlyComparison(ctx, h.household.Participants())
	if err != nil {
		return storageFailure("MonthlyComparison", err)
	}
	return Reply{Messages: []string{format.MonthlyComparison(rows)}}
}

func (h *Handlers) statsCategories(ctx context.Context, _ *turn) Reply {
	cats, err := h.db.TopCategories(ctx, h.household.Participants())
	if err != nil {
		return storageFailure("TopCategories", err)
	}
	return Reply{Messages: []string{format.TopCategories(cats)}}
}

func (h *Handlers) statsToday(ctx context.Context, _ *turn) Reply {
	rows, err := h.db.DailyExpenses(ctx, h.household.Participants(), h.db.Today())
	if err != nil {
		return storageFailure("DailyExpenses", err)
	}
	return Reply{Messages: []string{format.DailyExpenses(rows)}}
}

func (h *Handlers) sharedToday(ctx context.Context, _ *turn) Reply {
	rows, err := h.db.DailyExpenses(ctx, h.household.Participants(), h.db.Today())
	if err != nil {
		return storageFailure("DailyExpenses", err)
	}
	return Reply{Messages: []string{format.SharedToday(rows)}}
}

func (h *Handlers) weekly(ctx context.Context, _ *turn) Reply {
	participants := h.household.Participants()
	users, err := h.db.UsersByID(ctx, participants)
	if err != nil {
		return storageFailure("UsersByID", err)
	}
	rows := make([]format.UserWeeks, 0, len(users))
	for _, u := range users {
		weeks, err := h.db.WeeklySummary(ctx, []int64{u.ID}, weeklyBuckets)
		if err != nil {
			return storageFailure("WeeklySummary", err)
		}
		rows = append(rows, format.UserWeeks{User: u, Weeks: weeks})
	}
	if len(rows) == 0 {
		return message("📊 Данных пока нет")
	}
	return Reply{Messages: []string{format.Weekly(rows)}}
}
