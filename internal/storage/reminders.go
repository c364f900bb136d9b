package storage

import (
	"context"
	"fmt"

	"household-ledger/internal/models"
)

// TodayReminders returns today's plans that have notifications enabled and a
// notification time, tagged with the owner's handle.
func (db *DB) TodayReminders(ctx context.Context) ([]models.Reminder, error) {
	q := selectQuery{
		columns: planColumns + ", COALESCE(u.username, '')",
		from:    planFrom,
		orderBy: "p.notification_time, p.id",
	}
	q.where.add("p.date = ?", db.Today().Format(models.DateLayout))
	q.where.add("p.notification_enabled = TRUE")
	q.where.add("p.notification_time IS NOT NULL")
	q.where.add("p.is_deleted = FALSE")
	query, args := q.build()

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		var username string
		p, err := scanPlan(scanFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &username)...)
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		out = append(out, models.Reminder{Plan: p, Username: username})
	}
	return out, rows.Err()
}
