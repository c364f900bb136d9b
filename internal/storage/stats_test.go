package storage

import (
	"time"

	"household-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *DBTestSuite) seedStats() {
	today := suite.db.Today() // 2026-10-14
	suite.addTransaction(alice, models.KindExpense, "100.10", "кафе", today)
	suite.addTransaction(alice, models.KindIncome, "1000", "зарплата", today)
	suite.addTransaction(alice, models.KindExpense, "50.05", "транспорт", today.AddDate(0, 0, -3))
	suite.addTransaction(alice, models.KindExpense, "200", "кафе", date("2026-10-02"))
	suite.addTransaction(alice, models.KindExpense, "999", "жильё", date("2026-09-30"))
	suite.addTransaction(bob, models.KindExpense, "30", "кафе", today)
	suite.addTransaction(bob, models.KindExpense, "70", "продукты", today.AddDate(0, 0, -1))
	suite.addTransaction(bob, models.KindIncome, "500", "подработка", date("2026-10-05"))
}

func (suite *DBTestSuite) TestPeriodTotalsAreNested() {
	suite.seedStats()

	want := map[models.Period]struct {
		income, expense string
		count           int
	}{
		models.PeriodToday: {"1000.00", "100.10", 2},
		models.PeriodWeek:  {"1000.00", "150.15", 3},
		models.PeriodMonth: {"1000.00", "350.15", 4},
		models.PeriodAll:   {"1000.00", "1349.15", 5},
	}

	var prev models.PeriodTotals
	for _, p := range models.Periods {
		totals, err := suite.db.PeriodTotals(suite.ctx, []int64{alice}, p)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), want[p].income, totals.Income.StringFixed(2), "income for %s", p)
		assert.Equal(suite.T(), want[p].expense, totals.Expense.StringFixed(2), "expense for %s", p)
		assert.Equal(suite.T(), want[p].count, totals.Count, "count for %s", p)

		assert.True(suite.T(), totals.Expense.GreaterThanOrEqual(prev.Expense))
		assert.True(suite.T(), totals.Income.GreaterThanOrEqual(prev.Income))
		assert.GreaterOrEqual(suite.T(), totals.Count, prev.Count)
		prev = totals
	}
}

func (suite *DBTestSuite) TestWeekCrossesMonthStart() {
	suite.seedStats()
	suite.clock.now = time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC)

	totals := map[models.Period]models.PeriodTotals{}
	for _, p := range models.Periods {
		pt, err := suite.db.PeriodTotals(suite.ctx, []int64{alice}, p)
		require.NoError(suite.T(), err)
		totals[p] = pt
	}

	assert.Equal(suite.T(), "200.00", totals[models.PeriodToday].Expense.StringFixed(2))
	assert.Equal(suite.T(), "1199.00", totals[models.PeriodWeek].Expense.StringFixed(2))
	assert.Equal(suite.T(), "200.00", totals[models.PeriodMonth].Expense.StringFixed(2))
	assert.True(suite.T(), totals[models.PeriodWeek].Expense.GreaterThan(totals[models.PeriodMonth].Expense))

	assert.True(suite.T(), totals[models.PeriodWeek].Expense.GreaterThanOrEqual(totals[models.PeriodToday].Expense))
	assert.True(suite.T(), totals[models.PeriodMonth].Expense.GreaterThanOrEqual(totals[models.PeriodToday].Expense))
	assert.True(suite.T(), totals[models.PeriodAll].Expense.GreaterThanOrEqual(totals[models.PeriodWeek].Expense))
	assert.True(suite.T(), totals[models.PeriodAll].Expense.GreaterThanOrEqual(totals[models.PeriodMonth].Expense))
}

func (suite *DBTestSuite) TestPeriodTotalsEmpty() {
	totals, err := suite.db.PeriodTotals(suite.ctx, []int64{alice}, models.PeriodToday)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), totals.Income.IsZero())
	assert.True(suite.T(), totals.Expense.IsZero())
	assert.Zero(suite.T(), totals.Count)

	totals, err = suite.db.PeriodTotals(suite.ctx, nil, models.PeriodAll)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), totals.Count)
}

func (suite *DBTestSuite) TestHouseholdPeriodTotals() {
	suite.seedStats()

	totals, err := suite.db.PeriodTotals(suite.ctx, []int64{alice, bob}, models.PeriodMonth)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "1500.00", totals.Income.StringFixed(2))
	assert.Equal(suite.T(), "450.15", totals.Expense.StringFixed(2))
}

func (suite *DBTestSuite) TestCategoryTotals() {
	suite.seedStats()

	cats, err := suite.db.CategoryTotals(suite.ctx, []int64{alice}, models.KindExpense, models.PeriodMonth, 0)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), cats, 2)
	assert.Equal(suite.T(), "кафе", cats[0].Category)
	assert.Equal(suite.T(), "300.10", cats[0].Total.StringFixed(2))
	assert.Equal(suite.T(), 2, cats[0].Count)
	assert.Equal(suite.T(), "транспорт", cats[1].Category)

	top, err := suite.db.TopCategories(suite.ctx, []int64{alice, bob})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), top, 3)
	assert.Equal(suite.T(), "кафе", top[0].Category)
	assert.Equal(suite.T(), "330.10", top[0].Total.StringFixed(2))
	assert.Equal(suite.T(), "продукты", top[1].Category)
	assert.Equal(suite.T(), "транспорт", top[2].Category)
}

func (suite *DBTestSuite) TestDailyExpensesGroupedByUser() {
	suite.seedStats()
	suite.addTransaction(bob, models.KindExpense, "5", "кафе", suite.db.Today())

	rows, err := suite.db.DailyExpenses(suite.ctx, []int64{alice, bob}, suite.db.Today())
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 3)
	assert.Equal(suite.T(), "Alice", rows[0].OwnerName)
	assert.Equal(suite.T(), "Bob", rows[1].OwnerName)
	assert.Equal(suite.T(), "5", rows[1].Amount.String(), "newest first within a user")
	assert.Equal(suite.T(), "30", rows[2].Amount.String())
}

func (suite *DBTestSuite) TestMonthlyComparison() {
	suite.seedStats()

	rows, err := suite.db.MonthlyComparison(suite.ctx, []int64{alice, bob})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 2)
	assert.Equal(suite.T(), "Alice", rows[0].User.FullName)
	assert.Equal(suite.T(), "1000.00", rows[0].Income.StringFixed(2))
	assert.Equal(suite.T(), "350.15", rows[0].Expense.StringFixed(2))
	assert.Equal(suite.T(), "649.85", rows[0].Balance().StringFixed(2))
	assert.Equal(suite.T(), "Bob", rows[1].User.FullName)
	assert.Equal(suite.T(), "400.00", rows[1].Balance().StringFixed(2))
}

func (suite *DBTestSuite) TestCategoryComparison() {
	suite.seedStats()

	report, err := suite.db.CategoryComparison(suite.ctx, []int64{alice, bob}, models.PeriodMonth)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), report.Users, 2)
	require.Len(suite.T(), report.Rows, 3)

	cafe := report.Rows[0]
	assert.Equal(suite.T(), "кафе", cafe.Category)
	assert.Equal(suite.T(), "300.10", cafe.ByUser[0].StringFixed(2))
	assert.Equal(suite.T(), "30.00", cafe.ByUser[1].StringFixed(2))
	assert.Equal(suite.T(), "330.10", cafe.Total.StringFixed(2))

	food := report.Rows[1]
	assert.Equal(suite.T(), "продукты", food.Category)
	assert.True(suite.T(), food.ByUser[0].IsZero())
}

func (suite *DBTestSuite) TestWeeklySummary() {
	suite.seedStats()
	suite.addTransaction(alice, models.KindExpense, "1", "кафе", date("2026-09-20"))

	weeks, err := suite.db.WeeklySummary(suite.ctx, []int64{alice}, 4)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), weeks, 4)

	assert.Equal(suite.T(), "2026-10-12", weeks[0].Start.Format(models.DateLayout))
	assert.Equal(suite.T(), "2026-10-18", weeks[0].End.Format(models.DateLayout))
	assert.Equal(suite.T(), "100.10", weeks[0].Expense.StringFixed(2))
	assert.Equal(suite.T(), "1000.00", weeks[0].Income.StringFixed(2))

	assert.Equal(suite.T(), "50.05", weeks[1].Expense.StringFixed(2), "Sunday 2026-10-11 closes the previous week")

	assert.Equal(suite.T(), "2026-09-28", weeks[2].Start.Format(models.DateLayout))
	assert.Equal(suite.T(), "1199.00", weeks[2].Expense.StringFixed(2))

	assert.Equal(suite.T(), "2026-09-21", weeks[3].Start.Format(models.DateLayout))
	assert.True(suite.T(), weeks[3].Expense.IsZero(), "2026-09-20 falls before the oldest bucket")
}
