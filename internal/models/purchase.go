package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Rank orders priorities: high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

type PurchaseStatus string

const (
	StatusPlanned PurchaseStatus = "planned"
	StatusBought  PurchaseStatus = "bought"
)

func (s PurchaseStatus) Valid() bool {
	return s == StatusPlanned || s == StatusBought
}

// Purchase is a wish-list item.
type Purchase struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	ItemName   string          `json:"item_name"`
	Cost       decimal.Decimal `json:"estimated_cost"`
	Priority   Priority        `json:"priority"`
	TargetDate *time.Time      `json:"target_date,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
	Status     PurchaseStatus  `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type NewPurchase struct {
	UserID     int64
	ItemName   string
	Cost       decimal.Decimal
	Priority   Priority
	TargetDate *time.Time
	Notes      *string
}

func (p NewPurchase) Validate() error {
	if p.UserID == 0 {
		return invalid("user_id", "required")
	}
	if err := checkText("item_name", p.ItemName, true); err != nil {
		return err
	}
	if err := checkAmount("estimated_cost", p.Cost); err != nil {
		return err
	}
	if !p.Priority.Valid() {
		return invalid("priority", "unknown priority %q", p.Priority)
	}
	return checkOptionalText("notes", p.Notes)
}

// PurchaseUpdate carries the fields to change; nil fields are left alone.
// Empty Notes or a zero TargetDate clear the value.
type PurchaseUpdate struct {
	ItemName   *string
	Cost       *decimal.Decimal
	Priority   *Priority
	TargetDate *time.Time
	Notes      *string
}

func (p PurchaseUpdate) Validate() error {
	if p.ItemName != nil {
		if err := checkText("item_name", *p.ItemName, true); err != nil {
			return err
		}
	}
	if p.Cost != nil {
		if err := checkAmount("estimated_cost", *p.Cost); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("priority", "unknown priority %q", *p.Priority)
	}
	return checkOptionalText("notes", p.Notes)
}

func (p PurchaseUpdate) Empty() bool {
	return p.ItemName == nil && p.Cost == nil && p.Priority == nil && p.TargetDate == nil && p.Notes == nil
}
