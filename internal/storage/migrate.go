package storage

import (
	"context"
	"strings"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		created_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id {{serial}},
		user_id BIGINT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
		amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
		category TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id {{serial}},
		user_id BIGINT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL,
		time TEXT,
		category TEXT NOT NULL DEFAULT 'личные',
		is_shared BOOLEAN NOT NULL DEFAULT FALSE,
		notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		notification_time TEXT,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS planned_purchases (
		id {{serial}},
		user_id BIGINT NOT NULL REFERENCES users(id),
		item_name TEXT NOT NULL,
		estimated_cost_cents BIGINT NOT NULL CHECK (estimated_cost_cents > 0),
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
		target_date TEXT,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'planned' CHECK (status IN ('planned', 'bought')),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions (user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_date ON plans (date)`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_user_status ON planned_purchases (user_id, status)`,
}

func (db *DB) migrate(ctx context.Context) error {
	r := strings.NewReplacer(
		"{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{timestamp}}", "TIMESTAMP",
	)
	if db.driver == DriverPostgres {
		r = strings.NewReplacer(
			"{{serial}}", "BIGSERIAL PRIMARY KEY",
			"{{timestamp}}", "TIMESTAMPTZ",
		)
	}

	for _, m := range schema {
		if _, err := db.exec(ctx, r.Replace(m)); err != nil {
			return err
		}
	}
	return nil
}

// Migrate re-applies the schema. Open already does this; the statements are
// idempotent.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	if err := db.migrate(ctx); err != nil {
		return 0, err
	}
	return len(schema), nil
}
