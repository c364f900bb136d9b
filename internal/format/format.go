// Package format renders records and aggregates as chat messages in the
// HTML subset understood by chat clients. Free text is escaped by
// html/template.
package format

import (
	"embed"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"household-ledger/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var views = template.Must(template.New("views").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.tmpl"))

func render(name string, data any) string {
	var b strings.Builder
	if err := views.ExecuteTemplate(&b, name, data); err != nil {
		log.Printf("Template execution error: %v", err)
		return "❌ Ошибка отображения"
	}
	return b.String()
}

// Money renders an amount with two fraction digits and the currency.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2) + " руб."
}

// Date renders a calendar date.
func Date(t time.Time) string {
	return t.Format(models.DateLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// KindLabel names a transaction kind.
func KindLabel(k models.Kind) string {
	if k == models.KindIncome {
		return "Доход"
	}
	return "Расход"
}

// KindIcon is 💵 for income and 💸 for expenses.
func KindIcon(k models.Kind) string {
	if k == models.KindIncome {
		return "💵"
	}
	return "💸"
}

var priorityIcons = map[models.Priority]string{
	models.PriorityHigh:   "🔴",
	models.PriorityMedium: "🟡",
	models.PriorityLow:    "🟢",
}

var priorityLabels = map[models.Priority]string{
	models.PriorityHigh:   "высокий",
	models.PriorityMedium: "средний",
	models.PriorityLow:    "низкий",
}

// PriorityIcon returns the traffic-light icon of a priority.
func PriorityIcon(p models.Priority) string {
	if icon, ok := priorityIcons[p]; ok {
		return icon
	}
	return "⚪"
}

// PriorityLabel returns the Russian name of a priority.
func PriorityLabel(p models.Priority) string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// StatusIcon is ✅ for bought purchases and 📋 otherwise.
func StatusIcon(s models.PurchaseStatus) string {
	if s == models.StatusBought {
		return "✅"
	}
	return "📋"
}

var periodLabels = map[models.Period]string{
	models.PeriodToday: "сегодня",
	models.PeriodWeek:  "неделю",
	models.PeriodMonth: "месяц",
	models.PeriodAll:   "всё время",
}

// PeriodLabel completes the phrase «за ...».
func PeriodLabel(p models.Period) string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}
