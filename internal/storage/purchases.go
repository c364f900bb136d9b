package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"household-ledger/internal/models"
)

const purchaseColumns = "pp.id, pp.user_id, pp.item_name, pp.estimated_cost_cents, pp.priority, pp.target_date, " +
	"pp.notes, pp.status, pp.created_at, pp.updated_at"

const purchaseOrder = "CASE pp.priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, " +
	"pp.target_date NULLS LAST, pp.created_at, pp.id"

// PurchaseFilter selects a user's purchases for search. Zero fields do not filter.
type PurchaseFilter struct {
	UserID   int64
	Text     string
	Priority models.Priority
	Status   models.PurchaseStatus
	MinCost  *decimal.Decimal
	MaxCost  *decimal.Decimal
}

func scanPurchase(s rowScanner) (models.Purchase, error) {
	var (
		p                models.Purchase
		cents            int64
		priority, status string
		target, notes    sql.NullString
	)
	err := s.Scan(&p.ID, &p.UserID, &p.ItemName, &cents, &priority, &target, &notes, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if p.TargetDate, err = nullableDate(target); err != nil {
		return p, fmt.Errorf("bad target date %q: %w", target.String, err)
	}
	p.Cost = models.FromCents(cents)
	p.Priority = models.Priority(priority)
	p.Status = models.PurchaseStatus(status)
	p.Notes = nullableString(notes)
	return p, nil
}

func (db *DB) listPurchases(ctx context.Context, q selectQuery) ([]models.Purchase, error) {
	query, args := q.build()
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var out []models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePurchase inserts a planned purchase.
func (db *DB) CreatePurchase(ctx context.Context, p models.NewPurchase) (*models.Purchase, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := db.timestamp()

	var id int64
	err := db.queryRow(ctx,
		`INSERT INTO planned_purchases (user_id, item_name, estimated_cost_cents, priority, target_date, notes,
			status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.UserID, p.ItemName, models.ToCents(p.Cost), string(p.Priority), dateArg(p.TargetDate), textArg(p.Notes),
		string(models.StatusPlanned), now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	return db.GetPurchase(ctx, id, p.UserID)
}

// GetPurchase retrieves a live purchase owned by userID.
func (db *DB) GetPurchase(ctx context.Context, id, userID int64) (*models.Purchase, error) {
	p, err := scanPurchase(db.queryRow(ctx,
		"SELECT "+purchaseColumns+" FROM planned_purchases pp WHERE pp.id = ? AND pp.user_id = ? AND pp.is_deleted = FALSE",
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return &p, nil
}

// ListPurchases returns the user's purchases with the given status, most
// urgent first. An empty status lists all.
func (db *DB) ListPurchases(ctx context.Context, userID int64, status models.PurchaseStatus) ([]models.Purchase, error) {
	return db.SearchPurchases(ctx, PurchaseFilter{UserID: userID, Status: status})
}

// RecentPurchases returns the user's newest purchases by creation time.
func (db *DB) RecentPurchases(ctx context.Context, userID int64, limit int) ([]models.Purchase, error) {
	q := selectQuery{
		columns: purchaseColumns,
		from:    "planned_purchases pp",
		orderBy: "pp.created_at DESC, pp.id DESC",
		limit:   limit,
	}
	q.where.add("pp.user_id = ?", userID)
	q.where.add("pp.is_deleted = FALSE")
	return db.listPurchases(ctx, q)
}

// UpdatePurchase changes the set fields of a purchase owned by userID.
func (db *DB) UpdatePurchase(ctx context.Context, id, userID int64, u models.PurchaseUpdate) (*models.Purchase, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var set assignments
	if u.ItemName != nil {
		set.set("item_name", *u.ItemName)
	}
	if u.Cost != nil {
		set.set("estimated_cost_cents", models.ToCents(*u.Cost))
	}
	if u.Priority != nil {
		set.set("priority", string(*u.Priority))
	}
	if u.TargetDate != nil {
		set.set("target_date", dateArg(u.TargetDate))
	}
	if u.Notes != nil {
		set.set("notes", textArg(u.Notes))
	}
	return db.applyPurchase(ctx, id, userID, set)
}

// MarkPurchaseBought sets the status of a purchase owned by userID to bought.
func (db *DB) MarkPurchaseBought(ctx context.Context, id, userID int64) (*models.Purchase, error) {
	var set assignments
	set.set("status", string(models.StatusBought))
	return db.applyPurchase(ctx, id, userID, set)
}

func (db *DB) applyPurchase(ctx context.Context, id, userID int64, set assignments) (*models.Purchase, error) {
	if err := db.updateOwned(ctx, "planned_purchases", id, userID, set); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}
	return db.GetPurchase(ctx, id, userID)
}

// DeletePurchase soft-deletes a purchase owned by userID.
func (db *DB) DeletePurchase(ctx context.Context, id, userID int64) error {
	if err := db.softDelete(ctx, "planned_purchases", id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return nil
}

// SearchPurchases returns the user's purchases matching every set filter,
// ordered by priority rank then target date with undated items last.
func (db *DB) SearchPurchases(ctx context.Context, f PurchaseFilter) ([]models.Purchase, error) {
	q := selectQuery{columns: purchaseColumns, from: "planned_purchases pp", orderBy: purchaseOrder}
	q.where.add("pp.user_id = ?", f.UserID)
	q.where.add("pp.is_deleted = FALSE")
	if f.Text != "" {
		pattern := containsPattern(f.Text)
		q.where.add("("+db.like("pp.item_name")+" OR "+db.like("pp.notes")+")", pattern, pattern)
	}
	if f.Priority != "" {
		q.where.add("pp.priority = ?", string(f.Priority))
	}
	if f.Status != "" {
		q.where.add("pp.status = ?", string(f.Status))
	}
	if f.MinCost != nil {
		q.where.add("pp.estimated_cost_cents >= ?", models.ToCents(*f.MinCost))
	}
	if f.MaxCost != nil {
		q.where.add("pp.estimated_cost_cents <= ?", models.ToCents(*f.MaxCost))
	}
	return db.listPurchases(ctx, q)
}
