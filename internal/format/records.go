package format

import (
	"household-ledger/internal/models"
)

// Options tunes record rendering.
type Options struct {
	// WithID appends the record id, used by the manage menus.
	WithID bool
	// ViewerID marks whose records are "own"; others show their author.
	ViewerID int64
}

type transactionView struct {
	ID          int64
	Icon        string
	Label       string
	Amount      string
	Category    string
	Date        string
	Description string
	Owner       string
	WithID      bool
}

// Transaction renders one transaction.
func Transaction(t models.Transaction, opts Options) string {
	v := transactionView{
		ID:          t.ID,
		Icon:        KindIcon(t.Kind),
		Label:       KindLabel(t.Kind),
		Amount:      Money(t.Amount),
		Category:    t.Category,
		Date:        Date(t.Date),
		Description: deref(t.Description),
		WithID:      opts.WithID,
	}
	if opts.ViewerID != 0 && t.UserID != opts.ViewerID {
		v.Owner = t.OwnerName
	}
	return render("transaction", v)
}

type planView struct {
	ID          int64
	Title       string
	Shared      bool
	Date        string
	Time        string
	Category    string
	Description string
	Owner       string
	WithID      bool
}

// Plan renders one plan. The author is shown when it is not the viewer.
func Plan(p models.Plan, opts Options) string {
	v := planView{
		ID:          p.ID,
		Title:       p.Title,
		Shared:      p.Shared,
		Date:        Date(p.Date),
		Time:        deref(p.Time),
		Category:    p.Category,
		Description: deref(p.Description),
		WithID:      opts.WithID,
	}
	if opts.ViewerID != 0 && p.UserID != opts.ViewerID {
		v.Owner = p.OwnerName
	}
	return render("plan", v)
}

type purchaseView struct {
	ID           int64
	PriorityIcon string
	Name         string
	StatusIcon   string
	Cost         string
	Target       string
	Notes        string
	WithID       bool
}

// Purchase renders one wish-list item.
func Purchase(p models.Purchase, opts Options) string {
	v := purchaseView{
		ID:           p.ID,
		PriorityIcon: PriorityIcon(p.Priority),
		Name:         p.ItemName,
		StatusIcon:   StatusIcon(p.Status),
		Cost:         Money(p.Cost),
		Notes:        deref(p.Notes),
		WithID:       opts.WithID,
	}
	if p.TargetDate != nil {
		v.Target = Date(*p.TargetDate)
	}
	return render("purchase", v)
}

// Reminder renders the notification text for a plan due soon.
func Reminder(p models.Plan) string {
	return render("reminder", struct {
		Title       string
		Time        string
		Description string
	}{p.Title, deref(p.Time), deref(p.Description)})
}

// Transactions renders each transaction as a separate entry.
func Transactions(ts []models.Transaction, opts Options) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, Transaction(t, opts))
	}
	return out
}

// Plans renders each plan as a separate entry.
func Plans(ps []models.Plan, opts Options) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, Plan(p, opts))
	}
	return out
}

// Purchases renders each purchase as a separate entry.
func Purchases(ps []models.Purchase, opts Options) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, Purchase(p, opts))
	}
	return out
}
