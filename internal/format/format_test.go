package format

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-ledger/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	d, _ := time.Parse(models.DateLayout, s)
	return d
}

func strPtr(s string) *string { return &s }

func TestTransactionFormatting(t *testing.T) {
	tx := models.Transaction{
		ID:          12,
		UserID:      1,
		Kind:        models.KindExpense,
		Amount:      dec("1500.5"),
		Category:    "продукты",
		Description: strPtr("<script>alert(1)</script> & co"),
		Date:        day("2026-10-14"),
		OwnerName:   "Bob",
	}

	out := Transaction(tx, Options{})
	assert.Contains(t, out, "💸 <b>Расход:</b> 1500.50 руб.")
	assert.Contains(t, out, "📂 Категория: продукты")
	assert.Contains(t, out, "📅 Дата: 2026-10-14")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; co")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "🆔")
	assert.NotContains(t, out, "Bob")

	out = Transaction(tx, Options{WithID: true, ViewerID: 2})
	assert.Contains(t, out, "🆔 ID: 12")
	assert.Contains(t, out, "👤 Bob")

	tx.Kind = models.KindIncome
	tx.Description = nil
	out = Transaction(tx, Options{})
	assert.True(t, strings.HasPrefix(out, "💵 <b>Доход:</b>"))
	assert.NotContains(t, out, "Описание")
}

func TestPlanFormatting(t *testing.T) {
	p := models.Plan{
		ID:        3,
		UserID:    1,
		Title:     "Ужин <у мамы>",
		Date:      day("2026-10-15"),
		Time:      strPtr("19:00"),
		Category:  "встреча",
		Shared:    true,
		OwnerName: "Alice",
	}
	out := Plan(p, Options{ViewerID: 2})
	assert.Contains(t, out, "📅 <b>Ужин &lt;у мамы&gt;</b> 👥")
	assert.Contains(t, out, "📅 Дата: 2026-10-15 в 19:00")
	assert.Contains(t, out, "🏷️ Категория: встреча")
	assert.Contains(t, out, "👤 Автор: Alice")

	p.Shared = false
	p.Time = nil
	out = Plan(p, Options{ViewerID: 1})
	assert.NotContains(t, out, "👥")
	assert.NotContains(t, out, " в ")
	assert.NotContains(t, out, "Автор")
}

func TestPurchaseFormatting(t *testing.T) {
	target := day("2026-12-01")
	p := models.Purchase{
		ID:         5,
		ItemName:   "Велосипед",
		Cost:       dec("45000"),
		Priority:   models.PriorityHigh,
		TargetDate: &target,
		Notes:      strPtr("\"горный\""),
		Status:     models.StatusPlanned,
	}
	out := Purchase(p, Options{WithID: true})
	assert.Contains(t, out, "🔴 <b>Велосипед</b> 📋")
	assert.Contains(t, out, "💰 Стоимость: 45000.00 руб.")
	assert.Contains(t, out, "📅 до 2026-12-01")
	assert.Contains(t, out, "&#34;горный&#34;")
	assert.Contains(t, out, "🆔 ID: 5")

	p.Status = models.StatusBought
	p.Priority = models.PriorityLow
	p.TargetDate = nil
	out = Purchase(p, Options{})
	assert.Contains(t, out, "🟢 <b>Велосипед</b> ✅")
	assert.NotContains(t, out, "📅")
}

func TestChunkKeepsEntriesWhole(t *testing.T) {
	entry := strings.Repeat("ж", 90) + "\n"
	var entries []string
	for i := 0; i < 10; i++ {
		entries = append(entries, entry)
	}

	chunks := Chunk("header\n", entries, 300)
	require.Len(t, chunks, 4)
	assert.True(t, strings.HasPrefix(chunks[0], "header\n\n"))

	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 300)
		total += strings.Count(c, entry)
	}
	assert.Equal(t, 10, total)

	assert.Empty(t, Chunk("", nil, 300))
	assert.Equal(t, []string{"a\nb"}, Chunk("a", []string{"b"}, 0))
}

func TestChunkSplitsOversizedEntries(t *testing.T) {
	long := strings.Repeat("я", 9000)
	chunks := Chunk("📋 Покупки:", []string{"short", long, "tail"}, 0)
	require.Len(t, chunks, 5)
	assert.Equal(t, "📋 Покупки:\nshort", chunks[0])
	assert.Equal(t, "tail", chunks[4])
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), MaxMessageLength)
		total += strings.Count(c, "я")
	}
	assert.Equal(t, 9000, total)

	lines := strings.Repeat("x", 200) + "\n" + strings.Repeat("y", 200)
	assert.Equal(t, []string{strings.Repeat("x", 200), strings.Repeat("y", 200)}, Chunk("", []string{lines}, 300))
}

func TestPeriodStats(t *testing.T) {
	out := PeriodStats("Статистика за "+PeriodLabel(models.PeriodMonth),
		models.PeriodTotals{Income: dec("1000"), Expense: dec("350.15"), Count: 4},
		[]models.CategoryTotal{{Category: "кафе", Total: dec("300.10"), Count: 2}})
	assert.Contains(t, out, "📊 <b>Статистика за месяц:</b>")
	assert.Contains(t, out, "📈 <b>Доходы:</b> 1000.00 руб.")
	assert.Contains(t, out, "💰 <b>Баланс:</b> 649.85 руб.")
	assert.Contains(t, out, "📋 <b>Количество операций:</b> 4")
	assert.Contains(t, out, "🍔 кафе: 300.10 руб. (2)")
}

func TestDailyExpensesGroupsByOwner(t *testing.T) {
	rows := []models.Transaction{
		{UserID: 1, OwnerName: "Alice", Category: "кафе", Amount: dec("100.10")},
		{UserID: 2, OwnerName: "Bob", Category: "кафе", Amount: dec("5"), Description: strPtr("чай")},
		{UserID: 2, OwnerName: "Bob", Category: "продукты", Amount: dec("30")},
	}
	out := DailyExpenses(rows)
	assert.Contains(t, out, "<b>👤 Alice:</b>")
	assert.Contains(t, out, "  • кафе: 5.00 руб. - чай")
	assert.Contains(t, out, "<b>Итого: 35.00 руб.</b>")
	assert.Contains(t, out, "💰 <b>Общая сумма: 135.10 руб.</b>")
	assert.Less(t, strings.Index(out, "Alice"), strings.Index(out, "Bob"))

	shared := SharedToday(rows)
	assert.Contains(t, shared, "<b>Bob:</b> 35.00 руб.")
	assert.Contains(t, shared, "💰 <b>Всего: 135.10 руб.</b>")

	assert.Contains(t, DailyExpenses(nil), "Сегодня еще не было расходов")
}

func TestMonthlyComparisonAndIncomes(t *testing.T) {
	rows := []models.UserTotals{
		{User: models.User{FullName: "Alice"}, Income: dec("1000"), Expense: dec("350.15")},
		{User: models.User{Username: "bob"}, Income: dec("500"), Expense: dec("100")},
	}
	out := MonthlyComparison(rows)
	assert.Contains(t, out, "<b>Alice:</b>")
	assert.Contains(t, out, "<b>bob:</b>")
	assert.Contains(t, out, "⚖️ Баланс: 649.85 руб.")
	assert.Contains(t, out, "📈 Общий доход: 1500.00 руб.")
	assert.Contains(t, out, "⚖️ Общий баланс: 1049.85 руб.")

	assert.Contains(t, Incomes(rows), "<b>Общие доходы:</b> 1500.00 руб.")
	assert.Contains(t, MonthlyComparison(nil), "нет")
}

func TestCategoryComparisonShares(t *testing.T) {
	report := models.ComparisonReport{
		Users: []models.User{{FullName: "Alice"}, {FullName: "Bob"}},
		Rows: []models.CategoryComparison{
			{Category: "кафе", ByUser: []decimal.Decimal{dec("300"), dec("100")}, Total: dec("400")},
			{Category: "продукты", ByUser: []decimal.Decimal{decimal.Zero, dec("70")}, Total: dec("70")},
		},
	}
	out := CategoryComparison("Доли по категориям", report, true)
	assert.Contains(t, out, "🍔 <b>кафе</b> - 400.00 руб.")
	assert.Contains(t, out, "  • Alice: 300.00 руб. (75.0%)")
	assert.Contains(t, out, "  • Bob: 100.00 руб. (25.0%)")
	assert.Contains(t, out, "  • Bob: 170.00 руб.")
	assert.Contains(t, out, "Общие расходы: 470.00 руб.")

	out = CategoryComparison("Общие расходы", report, false)
	assert.NotContains(t, out, "%")
}

func TestWeeklyGroupsByWeek(t *testing.T) {
	weeks := func(exp ...string) []models.WeekBucket {
		var out []models.WeekBucket
		start := day("2026-10-12")
		for i, e := range exp {
			s := start.AddDate(0, 0, -7*i)
			out = append(out, models.WeekBucket{Start: s, End: s.AddDate(0, 0, 6), Expense: dec(e)})
		}
		return out
	}
	out := Weekly([]UserWeeks{
		{User: models.User{FullName: "Alice"}, Weeks: weeks("10", "20")},
		{User: models.User{FullName: "Bob"}, Weeks: weeks("1", "2")},
	})
	first := strings.Index(out, "Неделя с 2026-10-12")
	second := strings.Index(out, "Неделя с 2026-10-05")
	require.True(t, first >= 0 && second > first)
	assert.Equal(t, 2, strings.Count(out[first:second], "👤"))
	assert.Contains(t, out, "💸 Расходы: 20.00 руб.")
}

func TestTopCategoriesAndShare(t *testing.T) {
	out := TopCategories([]models.CategoryTotal{
		{Category: "кафе", Total: dec("330.10"), Count: 3},
		{Category: "неизвестно", Total: dec("1"), Count: 1},
	})
	assert.Contains(t, out, "1. 🍔 <b>кафе:</b> 330.10 руб. (3 записей)")
	assert.Contains(t, out, "2. 📂 <b>неизвестно:</b>")
	assert.Contains(t, out, "💸 <b>Всего расходов:</b> 331.10 руб.")

	assert.Equal(t, "33.3", Share(dec("1"), dec("3")))
	assert.Equal(t, "0.0", Share(dec("1"), decimal.Zero))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "неделю", PeriodLabel(models.PeriodWeek))
	assert.Equal(t, "средний", PriorityLabel(models.PriorityMedium))
	assert.Equal(t, "⚪", PriorityIcon("urgent"))
	assert.Contains(t, Reminder(models.Plan{Title: "Врач", Time: strPtr("09:00")}), "🕐 Время: 09:00")
}
