package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes income from expense transactions.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is a single income or expense record.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// OwnerName is filled by cross-user queries only.
	OwnerName string `json:"owner_name,omitempty"`
}

// NewTransaction holds the fields collected by the add flow.
// A zero Date means the current day.
type NewTransaction struct {
	UserID      int64
	Kind        Kind
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        time.Time
}

func (p NewTransaction) Validate() error {
	if p.UserID == 0 {
		return invalid("user_id", "required")
	}
	if !p.Kind.Valid() {
		return invalid("kind", "unknown kind %q", p.Kind)
	}
	if err := checkAmount("amount", p.Amount); err != nil {
		return err
	}
	if err := checkText("category", p.Category, true); err != nil {
		return err
	}
	return checkOptionalText("description", p.Description)
}

// TransactionUpdate carries the fields to change; nil fields are left alone.
// An empty Description clears it.
type TransactionUpdate struct {
	Amount      *decimal.Decimal
	Category    *string
	Description *string
}

func (p TransactionUpdate) Validate() error {
	if p.Amount != nil {
		if err := checkAmount("amount", *p.Amount); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := checkText("category", *p.Category, true); err != nil {
			return err
		}
	}
	return checkOptionalText("description", p.Description)
}

// Empty reports whether no field is set.
func (p TransactionUpdate) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil
}
