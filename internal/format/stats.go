package format

import (
	"github.com/shopspring/decimal"

	"household-ledger/internal/models"
)

var hundred = decimal.NewFromInt(100)

type categoryView struct {
	Icon  string
	Name  string
	Total string
	Count int
}

func categoryViews(cats []models.CategoryTotal) []categoryView {
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{
			Icon:  models.CategoryIcon(c.Category),
			Name:  c.Category,
			Total: Money(c.Total),
			Count: c.Count,
		})
	}
	return out
}

// PeriodStats renders totals for a period with an optional expense
// breakdown by category. title completes «📊 ...:».
func PeriodStats(title string, t models.PeriodTotals, expenses []models.CategoryTotal) string {
	return render("period", struct {
		Title                    string
		Income, Expense, Balance string
		Count                    int
		Categories               []categoryView
	}{
		Title:      title,
		Income:     Money(t.Income),
		Expense:    Money(t.Expense),
		Balance:    Money(t.Balance()),
		Count:      t.Count,
		Categories: categoryViews(expenses),
	})
}

// UserWeeks is one participant's weekly buckets, newest first.
type UserWeeks struct {
	User  models.User
	Weeks []models.WeekBucket
}

type userBalanceView struct {
	Name                     string
	Income, Expense, Balance string
}

func balanceView(name string, income, expense decimal.Decimal) userBalanceView {
	return userBalanceView{
		Name:    name,
		Income:  Money(income),
		Expense: Money(expense),
		Balance: Money(income.Sub(expense)),
	}
}

// Weekly renders the weekly summary grouped by week, then participant.
func Weekly(rows []UserWeeks) string {
	type weekView struct {
		Start string
		Users []userBalanceView
	}
	var weeks []weekView
	for _, r := range rows {
		for i, w := range r.Weeks {
			for len(weeks) <= i {
				weeks = append(weeks, weekView{Start: Date(w.Start)})
			}
			weeks[i].Users = append(weeks[i].Users, balanceView(r.User.DisplayName(), w.Income, w.Expense))
		}
	}
	return render("weekly", weeks)
}

type itemView struct {
	Category    string
	Amount      string
	Description string
}

type userItemsView struct {
	Name  string
	Items []itemView
	Total string
}

// groupByOwner splits rows ordered by owner into runs, summing each.
func groupByOwner(rows []models.Transaction) ([]userItemsView, decimal.Decimal) {
	var (
		users   []userItemsView
		current int64
		sub     decimal.Decimal
		overall decimal.Decimal
	)
	for i, t := range rows {
		if i == 0 || t.UserID != current {
			if i > 0 {
				users[len(users)-1].Total = Money(sub)
			}
			current, sub = t.UserID, decimal.Zero
			users = append(users, userItemsView{Name: t.OwnerName})
		}
		u := &users[len(users)-1]
		u.Items = append(u.Items, itemView{Category: t.Category, Amount: Money(t.Amount), Description: deref(t.Description)})
		sub = sub.Add(t.Amount)
		overall = overall.Add(t.Amount)
	}
	if len(users) > 0 {
		users[len(users)-1].Total = Money(sub)
	}
	return users, overall
}

// DailyExpenses renders today's expenses per participant with subtotals.
// rows must be grouped by owner.
func DailyExpenses(rows []models.Transaction) string {
	if len(rows) == 0 {
		return "💸 <b>Сегодня еще не было расходов</b>"
	}
	users, total := groupByOwner(rows)
	return render("daily", struct {
		Users []userItemsView
		Total string
	}{users, Money(total)})
}

// SharedToday renders only the per-participant totals of today's expenses.
func SharedToday(rows []models.Transaction) string {
	if len(rows) == 0 {
		return "💸 <b>Сегодня еще не было общих расходов</b>"
	}
	users, total := groupByOwner(rows)
	return render("shared_today", struct {
		Users []userItemsView
		Total string
	}{users, Money(total)})
}

func sumTotals(rows []models.UserTotals) (views []userBalanceView, income, expense decimal.Decimal) {
	for _, r := range rows {
		views = append(views, balanceView(r.User.DisplayName(), r.Income, r.Expense))
		income = income.Add(r.Income)
		expense = expense.Add(r.Expense)
	}
	return views, income, expense
}

// MonthlyComparison renders income, expense and balance per participant.
func MonthlyComparison(rows []models.UserTotals) string {
	if len(rows) == 0 {
		return "📊 Данных для сравнения нет"
	}
	users, income, expense := sumTotals(rows)
	total := balanceView("", income, expense)
	return render("comparison", struct {
		Users                    []userBalanceView
		Income, Expense, Balance string
	}{users, total.Income, total.Expense, total.Balance})
}

// Incomes renders the month's income per participant and combined.
func Incomes(rows []models.UserTotals) string {
	users, income, _ := sumTotals(rows)
	if income.IsZero() {
		return "💵 Доходов за месяц нет"
	}
	return render("incomes", struct {
		Users  []userBalanceView
		Income string
	}{users, Money(income)})
}

// TopCategories renders the ranked category list.
func TopCategories(cats []models.CategoryTotal) string {
	if len(cats) == 0 {
		return "📊 Данных по категориям нет"
	}
	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.Total)
	}
	return render("top_categories", struct {
		Categories []categoryView
		Total      string
	}{categoryViews(cats), Money(total)})
}

// Share is amount as a percentage of total with one fraction digit.
func Share(amount, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0"
	}
	return amount.Mul(hundred).Div(total).StringFixed(1)
}

// CategoryComparison renders per-category expenses of every participant.
// With shares set each amount carries its percentage of the category.
func CategoryComparison(title string, r models.ComparisonReport, shares bool) string {
	if len(r.Rows) == 0 {
		return "📊 Нет расходов за месяц"
	}
	type amountView struct {
		Name, Amount, Share string
	}
	type rowView struct {
		Icon, Name, Total string
		Users             []amountView
	}
	type totalView struct {
		Name, Expense string
	}

	perUser := make([]decimal.Decimal, len(r.Users))
	overall := decimal.Zero
	rows := make([]rowView, 0, len(r.Rows))
	for _, row := range r.Rows {
		rv := rowView{Icon: models.CategoryIcon(row.Category), Name: row.Category, Total: Money(row.Total)}
		for i, u := range r.Users {
			amount := decimal.Zero
			if i < len(row.ByUser) {
				amount = row.ByUser[i]
			}
			av := amountView{Name: u.DisplayName(), Amount: Money(amount)}
			if shares {
				av.Share = Share(amount, row.Total)
			}
			rv.Users = append(rv.Users, av)
			perUser[i] = perUser[i].Add(amount)
		}
		overall = overall.Add(row.Total)
		rows = append(rows, rv)
	}
	totals := make([]totalView, 0, len(r.Users))
	for i, u := range r.Users {
		totals = append(totals, totalView{Name: u.DisplayName(), Expense: Money(perUser[i])})
	}
	return render("category_comparison", struct {
		Title string
		Rows  []rowView
		Users []totalView
		Total string
	}{title, rows, totals, Money(overall)})
}
