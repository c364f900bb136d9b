package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"household-ledger/internal/models"
)

// UpsertUser registers a participant on first contact and refreshes the
// handle and display name afterwards. Empty values keep what is stored.
func (db *DB) UpsertUser(ctx context.Context, id int64, username, fullName string) (*models.User, error) {
	_, err := db.exec(ctx,
		`INSERT INTO users (id, username, full_name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = COALESCE(NULLIF(excluded.username, ''), users.username),
			full_name = COALESCE(NULLIF(excluded.full_name, ''), users.full_name)`,
		id, username, fullName, db.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return db.GetUser(ctx, id)
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := db.queryRow(ctx,
		"SELECT id, username, full_name, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UsersByID returns users in the order of ids. IDs that are not registered
// yet come back as a bare User with only the ID set.
func (db *DB) UsersByID(ctx context.Context, ids []int64) ([]models.User, error) {
	q := selectQuery{columns: "id, username, full_name, created_at", from: "users"}
	q.where.in("id", ids)
	query, args := q.build()

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]models.User, len(ids))
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		found[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, ok := found[id]
		if !ok {
			u = models.User{ID: id}
		}
		users = append(users, u)
	}
	return users, nil
}
