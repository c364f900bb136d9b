package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"household-ledger/internal/models"
)

const transactionColumns = "t.id, t.user_id, t.type, t.amount_cents, t.category, t.description, t.date, t.created_at, t.updated_at"

// listAllLimit caps the all-time transaction listing.
const listAllLimit = 50

// TransactionFilter selects transactions for search. Zero fields do not filter.
type TransactionFilter struct {
	UserID    int64
	Kind      models.Kind
	Text      string
	Category  string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Period    models.Period
	On        *time.Time
}

func scanTransaction(s rowScanner) (models.Transaction, error) {
	var (
		t     models.Transaction
		kind  string
		cents int64
		desc  sql.NullString
		date  string
	)
	if err := s.Scan(&t.ID, &t.UserID, &kind, &cents, &t.Category, &desc, &date, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return t, err
	}
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return t, fmt.Errorf("bad transaction date %q: %w", date, err)
	}
	t.Kind = models.Kind(kind)
	t.Amount = models.FromCents(cents)
	t.Description = nullableString(desc)
	t.Date = d
	return t, nil
}

func (db *DB) listTransactions(ctx context.Context, q selectQuery) ([]models.Transaction, error) {
	query, args := q.build()
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTransaction inserts a transaction. A zero date means today.
func (db *DB) CreateTransaction(ctx context.Context, p models.NewTransaction) (*models.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	date := p.Date
	if date.IsZero() {
		date = db.Today()
	}
	now := db.timestamp()

	var id int64
	err := db.queryRow(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, category, description, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.UserID, string(p.Kind), models.ToCents(p.Amount), p.Category, textArg(p.Description),
		date.Format(models.DateLayout), now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return db.GetTransaction(ctx, id, p.UserID)
}

// GetTransaction retrieves a live transaction owned by userID.
func (db *DB) GetTransaction(ctx context.Context, id, userID int64) (*models.Transaction, error) {
	t, err := scanTransaction(db.queryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions t WHERE t.id = ? AND t.user_id = ? AND t.is_deleted = FALSE",
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

// RecentTransactions returns the user's newest transactions by creation time.
func (db *DB) RecentTransactions(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	q := selectQuery{
		columns: transactionColumns,
		from:    "transactions t",
		orderBy: "t.created_at DESC, t.id DESC",
		limit:   limit,
	}
	q.where.add("t.user_id = ?", userID)
	q.where.add("t.is_deleted = FALSE")
	return db.listTransactions(ctx, q)
}

// ListTransactions returns the user's transactions in a period, newest date
// first. An empty kind lists both kinds. The all-time listing is capped.
func (db *DB) ListTransactions(ctx context.Context, userID int64, period models.Period, kind models.Kind) ([]models.Transaction, error) {
	r, err := db.periodRange(period)
	if err != nil {
		return nil, err
	}
	q := selectQuery{
		columns: transactionColumns,
		from:    "transactions t",
		orderBy: "t.date DESC, t.created_at DESC, t.id DESC",
	}
	q.where.add("t.user_id = ?", userID)
	q.where.add("t.is_deleted = FALSE")
	if kind != "" {
		q.where.add("t.type = ?", string(kind))
	}
	r.apply(&q.where, "t.date")
	if period == models.PeriodAll || period == "" {
		q.limit = listAllLimit
	}
	return db.listTransactions(ctx, q)
}

// UpdateTransaction changes the set fields of a transaction owned by userID.
func (db *DB) UpdateTransaction(ctx context.Context, id, userID int64, u models.TransactionUpdate) (*models.Transaction, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var set assignments
	if u.Amount != nil {
		set.set("amount_cents", models.ToCents(*u.Amount))
	}
	if u.Category != nil {
		set.set("category", *u.Category)
	}
	if u.Description != nil {
		set.set("description", textArg(u.Description))
	}
	if err := db.updateOwned(ctx, "transactions", id, userID, set); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return db.GetTransaction(ctx, id, userID)
}

// DeleteTransaction soft-deletes a transaction owned by userID.
func (db *DB) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if err := db.softDelete(ctx, "transactions", id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// SearchTransactions returns the user's transactions matching every set
// filter, newest date first.
func (db *DB) SearchTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	q := selectQuery{
		columns: transactionColumns,
		from:    "transactions t",
		orderBy: "t.date DESC, t.created_at DESC, t.id DESC",
	}
	q.where.add("t.user_id = ?", f.UserID)
	q.where.add("t.is_deleted = FALSE")
	if f.Kind != "" {
		q.where.add("t.type = ?", string(f.Kind))
	}
	if f.Text != "" {
		q.where.add(db.like("t.description"), containsPattern(f.Text))
	}
	if f.Category != "" {
		q.where.add("t.category = ?", f.Category)
	}
	if f.MinAmount != nil {
		q.where.add("t.amount_cents >= ?", models.ToCents(*f.MinAmount))
	}
	if f.MaxAmount != nil {
		q.where.add("t.amount_cents <= ?", models.ToCents(*f.MaxAmount))
	}
	if f.On != nil {
		q.where.add("t.date = ?", f.On.Format(models.DateLayout))
	} else {
		r, err := db.periodRange(f.Period)
		if err != nil {
			return nil, err
		}
		r.apply(&q.where, "t.date")
	}
	return db.listTransactions(ctx, q)
}
