package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"household-ledger/internal/models"
)

// topCategoriesLimit is the size of the household top-categories report.
const topCategoriesLimit = 10

// PeriodTotals sums income and expense of the given users over a period.
// No matching rows yield zero totals.
func (db *DB) PeriodTotals(ctx context.Context, userIDs []int64, period models.Period) (models.PeriodTotals, error) {
	r, err := db.periodRange(period)
	if err != nil {
		return models.PeriodTotals{}, err
	}
	q := selectQuery{
		columns: "COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0), " +
			"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0), COUNT(*)",
		from: "transactions",
	}
	q.where.in("user_id", userIDs)
	q.where.add("is_deleted = FALSE")
	r.apply(&q.where, "date")
	query, args := q.build()

	var income, expense int64
	var totals models.PeriodTotals
	if err := db.queryRow(ctx, query, args...).Scan(&income, &expense, &totals.Count); err != nil {
		return models.PeriodTotals{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	totals.Income = models.FromCents(income)
	totals.Expense = models.FromCents(expense)
	return totals, nil
}

// CategoryTotals groups the given users' transactions of one kind by
// category, largest total first. A positive limit caps the rows.
func (db *DB) CategoryTotals(ctx context.Context, userIDs []int64, kind models.Kind, period models.Period, limit int) ([]models.CategoryTotal, error) {
	r, err := db.periodRange(period)
	if err != nil {
		return nil, err
	}
	q := selectQuery{
		columns: "category, SUM(amount_cents) AS total, COUNT(*)",
		from:    "transactions",
		groupBy: "category",
		orderBy: "total DESC, category",
		limit:   limit,
	}
	q.where.in("user_id", userIDs)
	q.where.add("type = ?", string(kind))
	q.where.add("is_deleted = FALSE")
	r.apply(&q.where, "date")
	query, args := q.build()

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group categories: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		var cents int64
		if err := rows.Scan(&ct.Category, &cents, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		ct.Total = models.FromCents(cents)
		out = append(out, ct)
	}
	return out, rows.Err()
}

// TopCategories returns the household's ten largest expense categories this month.
func (db *DB) TopCategories(ctx context.Context, participants []int64) ([]models.CategoryTotal, error) {
	return db.CategoryTotals(ctx, participants, models.KindExpense, models.PeriodMonth, topCategoriesLimit)
}

// DailyExpenses returns the participants' expenses dated day, grouped by
// owner name and newest first within each owner.
func (db *DB) DailyExpenses(ctx context.Context, participants []int64, day time.Time) ([]models.Transaction, error) {
	q := selectQuery{
		columns: transactionColumns + ", COALESCE(u.full_name, '')",
		from:    "transactions t LEFT JOIN users u ON u.id = t.user_id",
		orderBy: "u.full_name, t.user_id, t.created_at DESC, t.id DESC",
	}
	q.where.in("t.user_id", participants)
	q.where.add("t.type = ?", string(models.KindExpense))
	q.where.add("t.date = ?", day.Format(models.DateLayout))
	q.where.add("t.is_deleted = FALSE")
	query, args := q.build()

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily expenses: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var owner string
		t, err := scanTransaction(scanFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &owner)...)
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.OwnerName = owner
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

// UserTotals returns income and expense per participant over a period, in
// participant order. Participants without rows get zero totals.
func (db *DB) UserTotals(ctx context.Context, participants []int64, period models.Period) ([]models.UserTotals, error) {
	r, err := db.periodRange(period)
	if err != nil {
		return nil, err
	}
	users, err := db.UsersByID(ctx, participants)
	if err != nil {
		return nil, err
	}

	q := selectQuery{
		columns: "user_id, type, SUM(amount_cents)",
		from:    "transactions",
		groupBy: "user_id, type",
	}
	q.where.in("user_id", participants)
	q.where.add("is_deleted = FALSE")
	r.apply(&q.where, "date")
	query, args := q.build()

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum per user: %w", err)
	}
	defer rows.Close()

	type key struct {
		user int64
		kind string
	}
	sums := make(map[key]int64)
	for rows.Next() {
		var k key
		var cents int64
		if err := rows.Scan(&k.user, &k.kind, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan user total: %w", err)
		}
		sums[k] = cents
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.UserTotals, 0, len(users))
	for _, u := range users {
		out = append(out, models.UserTotals{
			User:    u,
			Income:  models.FromCents(sums[key{u.ID, string(models.KindIncome)}]),
			Expense: models.FromCents(sums[key{u.ID, string(models.KindExpense)}]),
		})
	}
	return out, nil
}

// MonthlyComparison returns this month's income, expense and balance per participant.
func (db *DB) MonthlyComparison(ctx context.Context, participants []int64) ([]models.UserTotals, error) {
	return db.UserTotals(ctx, participants, models.PeriodMonth)
}

// CategoryComparison compares expense per category between participants over
// a period. Rows are ordered by household total, largest first.
func (db *DB) CategoryComparison(ctx context.Context, participants []int64, period models.Period) (models.ComparisonReport, error) {
	r, err := db.periodRange(period)
	if err != nil {
		return models.ComparisonReport{}, err
	}
	users, err := db.UsersByID(ctx, participants)
	if err != nil {
		return models.ComparisonReport{}, err
	}
	index := make(map[int64]int, len(participants))
	for i, id := range participants {
		index[id] = i
	}

	q := selectQuery{
		columns: "category, user_id, SUM(amount_cents)",
		from:    "transactions",
		groupBy: "category, user_id",
	}
	q.where.in("user_id", participants)
	q.where.add("type = ?", string(models.KindExpense))
	q.where.add("is_deleted = FALSE")
	r.apply(&q.where, "date")
	query, args := q.build()

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return models.ComparisonReport{}, fmt.Errorf("failed to compare categories: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[string]*models.CategoryComparison)
	var order []string
	for rows.Next() {
		var category string
		var userID, cents int64
		if err := rows.Scan(&category, &userID, &cents); err != nil {
			return models.ComparisonReport{}, fmt.Errorf("failed to scan comparison: %w", err)
		}
		row, ok := byCategory[category]
		if !ok {
			row = &models.CategoryComparison{Category: category, ByUser: make([]decimal.Decimal, len(participants))}
			byCategory[category] = row
			order = append(order, category)
		}
		amount := models.FromCents(cents)
		row.ByUser[index[userID]] = row.ByUser[index[userID]].Add(amount)
		row.Total = row.Total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return models.ComparisonReport{}, err
	}

	report := models.ComparisonReport{Users: users}
	for _, c := range order {
		report.Rows = append(report.Rows, *byCategory[c])
	}
	sort.SliceStable(report.Rows, func(i, j int) bool {
		if c := report.Rows[i].Total.Cmp(report.Rows[j].Total); c != 0 {
			return c > 0
		}
		return report.Rows[i].Category < report.Rows[j].Category
	})
	return report, nil
}

// WeeklySummary buckets the given users' transactions into Monday-start
// weeks, the current week first.
func (db *DB) WeeklySummary(ctx context.Context, userIDs []int64, weeks int) ([]models.WeekBucket, error) {
	if weeks <= 0 {
		return nil, nil
	}
	current := WeekStart(db.Today())
	first := current.AddDate(0, 0, -7*(weeks-1))
	last := current.AddDate(0, 0, 6)

	buckets := make([]models.WeekBucket, weeks)
	for i := range buckets {
		start := current.AddDate(0, 0, -7*i)
		buckets[i] = models.WeekBucket{Start: start, End: start.AddDate(0, 0, 6)}
	}

	q := selectQuery{
		columns: "date, type, SUM(amount_cents)",
		from:    "transactions",
		groupBy: "date, type",
	}
	q.where.in("user_id", userIDs)
	q.where.add("is_deleted = FALSE")
	dateRange{from: first, to: last}.apply(&q.where, "date")
	query, args := q.build()

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var date, kind string
		var cents int64
		if err := rows.Scan(&date, &kind, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan weekly summary: %w", err)
		}
		d, err := time.Parse(models.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("bad transaction date %q: %w", date, err)
		}
		i := int(current.Sub(WeekStart(d)).Hours()/24) / 7
		if i < 0 || i >= weeks {
			continue
		}
		amount := models.FromCents(cents)
		if kind == string(models.KindIncome) {
			buckets[i].Income = buckets[i].Income.Add(amount)
		} else {
			buckets[i].Expense = buckets[i].Expense.Add(amount)
		}
	}
	return buckets, rows.Err()
}
