package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"household-ledger/internal/models"
)

const planColumns = "p.id, p.user_id, p.title, p.description, p.date, p.time, p.category, p.is_shared, " +
	"p.notification_enabled, p.notification_time, p.created_at, p.updated_at, COALESCE(u.full_name, '')"

const planFrom = "plans p LEFT JOIN users u ON u.id = p.user_id"

const planDateOrder = "p.date, p.time NULLS FIRST, p.created_at, p.id"

// PlanFilter selects plans visible to ViewerID. Zero fields do not filter.
type PlanFilter struct {
	ViewerID   int64
	OwnerID    int64
	Text       string
	Category   string
	From       *time.Time
	To         *time.Time
	SharedOnly bool
}

func scanPlan(s rowScanner) (models.Plan, error) {
	var (
		p                   models.Plan
		desc, tod, notifyAt sql.NullString
		date                string
	)
	err := s.Scan(&p.ID, &p.UserID, &p.Title, &desc, &date, &tod, &p.Category, &p.Shared,
		&p.NotificationEnabled, &notifyAt, &p.CreatedAt, &p.UpdatedAt, &p.OwnerName)
	if err != nil {
		return p, err
	}
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return p, fmt.Errorf("bad plan date %q: %w", date, err)
	}
	p.Date = d
	p.Description = nullableString(desc)
	p.Time = nullableString(tod)
	p.NotificationTime = nullableString(notifyAt)
	return p, nil
}

func (db *DB) listPlans(ctx context.Context, q selectQuery) ([]models.Plan, error) {
	query, args := q.build()
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var out []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// notificationTime returns the reminder time for a plan starting at tod, or
// nil when the plan has no time. Leads past midnight clamp to 00:00.
func (db *DB) notificationTime(tod *string) *string {
	if tod == nil || *tod == "" {
		return nil
	}
	t, err := time.Parse(models.TimeLayout, *tod)
	if err != nil {
		return nil
	}
	at := t.Add(-db.lead)
	if at.Day() != t.Day() {
		at = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	s := at.Format(models.TimeLayout)
	return &s
}

// CreatePlan inserts a plan with notifications enabled.
func (db *DB) CreatePlan(ctx context.Context, p models.NewPlan) (*models.Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	category := p.Category
	if category == "" {
		category = models.DefaultPlanCategory
	}
	var tod *string
	if p.Time != nil && *p.Time != "" {
		normalized, _ := models.ParseTimeOfDay(*p.Time)
		tod = &normalized
	}
	now := db.timestamp()

	var id int64
	err := db.queryRow(ctx,
		`INSERT INTO plans (user_id, title, description, date, time, category, is_shared,
			notification_enabled, notification_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.UserID, p.Title, textArg(p.Description), p.Date.Format(models.DateLayout), textArg(tod),
		category, p.Shared, true, textArg(db.notificationTime(tod)), now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return db.GetOwnPlan(ctx, id, p.UserID)
}

func (db *DB) getPlan(ctx context.Context, cond string, args ...any) (*models.Plan, error) {
	p, err := scanPlan(db.queryRow(ctx,
		"SELECT "+planColumns+" FROM "+planFrom+" WHERE "+cond+" AND p.is_deleted = FALSE", args...,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &p, nil
}

// GetPlan retrieves a plan visible to viewerID.
func (db *DB) GetPlan(ctx context.Context, id, viewerID int64) (*models.Plan, error) {
	return db.getPlan(ctx, "p.id = ? AND (p.user_id = ? OR p.is_shared = TRUE)", id, viewerID)
}

// GetOwnPlan retrieves a plan owned by userID.
func (db *DB) GetOwnPlan(ctx context.Context, id, userID int64) (*models.Plan, error) {
	return db.getPlan(ctx, "p.id = ? AND p.user_id = ?", id, userID)
}

// PlansForDate returns the plans on date visible to viewerID, earliest first
// with untimed plans leading.
func (db *DB) PlansForDate(ctx context.Context, viewerID int64, date time.Time) ([]models.Plan, error) {
	q := selectQuery{columns: planColumns, from: planFrom, orderBy: "p.time NULLS FIRST, p.created_at, p.id"}
	q.where.add("(p.user_id = ? OR p.is_shared = TRUE)", viewerID)
	q.where.add("p.date = ?", date.Format(models.DateLayout))
	q.where.add("p.is_deleted = FALSE")
	return db.listPlans(ctx, q)
}

// RecentPlans returns the newest plans visible to viewerID.
func (db *DB) RecentPlans(ctx context.Context, viewerID int64, limit int) ([]models.Plan, error) {
	q := selectQuery{columns: planColumns, from: planFrom, orderBy: "p.created_at DESC, p.id DESC", limit: limit}
	q.where.add("(p.user_id = ? OR p.is_shared = TRUE)", viewerID)
	q.where.add("p.is_deleted = FALSE")
	return db.listPlans(ctx, q)
}

// OwnRecentPlans returns the newest plans created by userID.
func (db *DB) OwnRecentPlans(ctx context.Context, userID int64, limit int) ([]models.Plan, error) {
	q := selectQuery{columns: planColumns, from: planFrom, orderBy: "p.created_at DESC, p.id DESC", limit: limit}
	q.where.add("p.user_id = ?", userID)
	q.where.add("p.is_deleted = FALSE")
	return db.listPlans(ctx, q)
}

// SharedPlans returns upcoming shared plans from the given date on.
func (db *DB) SharedPlans(ctx context.Context, from time.Time) ([]models.Plan, error) {
	q := selectQuery{columns: planColumns, from: planFrom, orderBy: planDateOrder}
	q.where.add("p.is_shared = TRUE")
	q.where.add("p.date >= ?", from.Format(models.DateLayout))
	q.where.add("p.is_deleted = FALSE")
	return db.listPlans(ctx, q)
}

// UpdatePlan changes the set fields of a plan owned by userID. Changing the
// time recomputes the notification time.
func (db *DB) UpdatePlan(ctx context.Context, id, userID int64, u models.PlanUpdate) (*models.Plan, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var set assignments
	if u.Title != nil {
		set.set("title", *u.Title)
	}
	if u.Description != nil {
		set.set("description", textArg(u.Description))
	}
	if u.Date != nil {
		set.set("date", u.Date.Format(models.DateLayout))
	}
	if u.Time != nil {
		tod := u.Time
		if *tod != "" {
			normalized, _ := models.ParseTimeOfDay(*tod)
			tod = &normalized
		}
		set.set("time", textArg(tod))
		set.set("notification_time", textArg(db.notificationTime(tod)))
	}
	if u.Category != nil {
		set.set("category", *u.Category)
	}
	if err := db.updateOwned(ctx, "plans", id, userID, set); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return db.GetOwnPlan(ctx, id, userID)
}

// SetPlanShared sets the shared flag of a plan owned by userID.
func (db *DB) SetPlanShared(ctx context.Context, id, userID int64, shared bool) (*models.Plan, error) {
	var set assignments
	set.set("is_shared", shared)
	if err := db.updateOwned(ctx, "plans", id, userID, set); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return db.GetOwnPlan(ctx, id, userID)
}

// TogglePlanShared flips the shared flag of a plan owned by userID.
func (db *DB) TogglePlanShared(ctx context.Context, id, userID int64) (*models.Plan, error) {
	p, err := db.GetOwnPlan(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return db.SetPlanShared(ctx, id, userID, !p.Shared)
}

// DeletePlan soft-deletes a plan owned by userID.
func (db *DB) DeletePlan(ctx context.Context, id, userID int64) error {
	if err := db.softDelete(ctx, "plans", id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return nil
}

// SearchPlans returns plans visible to the viewer matching every set filter,
// ordered by date then time with untimed plans first.
func (db *DB) SearchPlans(ctx context.Context, f PlanFilter) ([]models.Plan, error) {
	q := selectQuery{columns: planColumns, from: planFrom, orderBy: planDateOrder}
	q.where.add("(p.user_id = ? OR p.is_shared = TRUE)", f.ViewerID)
	q.where.add("p.is_deleted = FALSE")
	if f.OwnerID != 0 {
		q.where.add("p.user_id = ?", f.OwnerID)
	}
	if f.Text != "" {
		pattern := containsPattern(f.Text)
		q.where.add("("+db.like("p.title")+" OR "+db.like("p.description")+")", pattern, pattern)
	}
	if f.Category != "" {
		q.where.add("p.category = ?", f.Category)
	}
	if f.From != nil {
		q.where.add("p.date >= ?", f.From.Format(models.DateLayout))
	}
	if f.To != nil {
		q.where.add("p.date <= ?", f.To.Format(models.DateLayout))
	}
	if f.SharedOnly {
		q.where.add("p.is_shared = TRUE")
	}
	return db.listPlans(ctx, q)
}
