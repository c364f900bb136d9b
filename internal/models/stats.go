package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period bounds statistics queries.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Periods lists periods from narrowest to widest.
var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodAll}

func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return true
	}
	return false
}

// ParsePeriod accepts the English period names and their Russian labels.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "today", "сегодня":
		return PeriodToday, nil
	case "week", "неделя":
		return PeriodWeek, nil
	case "month", "месяц":
		return PeriodMonth, nil
	case "all", "всё", "все":
		return PeriodAll, nil
	}
	return "", invalid("period", "unknown period %q", s)
}

// PeriodTotals is the aggregate of one user's transactions over a period.
type PeriodTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Count   int             `json:"count"`
}

func (t PeriodTotals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// CategoryTotal is the sum of transactions in one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// UserTotals is one participant's income and expense over a period.
type UserTotals struct {
	User    User            `json:"user"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

func (t UserTotals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// CategoryComparison holds one category's expense per participant.
// ByUser is aligned with Users of the enclosing report.
type CategoryComparison struct {
	Category string            `json:"category"`
	ByUser   []decimal.Decimal `json:"by_user"`
	Total    decimal.Decimal   `json:"total"`
}

// ComparisonReport is the category-level expense comparison between participants.
type ComparisonReport struct {
	Users []User               `json:"users"`
	Rows  []CategoryComparison `json:"rows"`
}

// WeekBucket is a Monday-start week of totals.
type WeekBucket struct {
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Reminder is a plan due today with notifications on.
type Reminder struct {
	Plan     Plan   `json:"plan"`
	Username string `json:"username"`
}
