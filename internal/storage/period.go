package storage

import (
	"fmt"
	"time"

	"household-ledger/internal/models"
)

// dateRange is an inclusive range of calendar dates. Zero bounds are open.
type dateRange struct {
	from time.Time
	to   time.Time
}

// periodRange resolves a period against today. The week is today and the six
// days before it, the month runs from the 1st through today. In the first six
// days of a month the week reaches into the previous month, so week totals
// may exceed month totals there; only today ⊆ week and today ⊆ month ⊆ all hold.
func (db *DB) periodRange(p models.Period) (dateRange, error) {
	today := db.Today()
	switch p {
	case models.PeriodToday:
		return dateRange{from: today, to: today}, nil
	case models.PeriodWeek:
		return dateRange{from: today.AddDate(0, 0, -6), to: today}, nil
	case models.PeriodMonth:
		return dateRange{from: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), to: today}, nil
	case models.PeriodAll, "":
		return dateRange{}, nil
	}
	return dateRange{}, models.ValidationError{Field: "period", Message: fmt.Sprintf("unknown period %q", p)}
}

func (r dateRange) apply(w *where, column string) {
	if !r.from.IsZero() {
		w.add(column+" >= ?", r.from.Format(models.DateLayout))
	}
	if !r.to.IsZero() {
		w.add(column+" <= ?", r.to.Format(models.DateLayout))
	}
}

// WeekStart returns the Monday on or before d.
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return models.DateOf(d).AddDate(0, 0, -offset)
}
