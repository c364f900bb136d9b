package models

import "time"

// Plan is a dated planner entry. Shared plans are visible to every participant.
type Plan struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Title               string    `json:"title"`
	Description         *string   `json:"description,omitempty"`
	Date                time.Time `json:"date"`
	Time                *string   `json:"time,omitempty"`
	Category            string    `json:"category"`
	Shared              bool      `json:"shared"`
	NotificationEnabled bool      `json:"notification_enabled"`
	NotificationTime    *string   `json:"notification_time,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	OwnerName string `json:"owner_name,omitempty"`
}

// VisibleTo reports whether userID may read the plan.
func (p Plan) VisibleTo(userID int64) bool {
	return p.UserID == userID || p.Shared
}

// NewPlan holds the fields collected by the add flow.
type NewPlan struct {
	UserID      int64
	Title       string
	Description *string
	Date        time.Time
	Time        *string
	Category    string
	Shared      bool
}

func (p NewPlan) Validate() error {
	if p.UserID == 0 {
		return invalid("user_id", "required")
	}
	if err := checkText("title", p.Title, true); err != nil {
		return err
	}
	if p.Date.IsZero() {
		return invalid("date", "required")
	}
	if p.Time != nil {
		if _, err := ParseTimeOfDay(*p.Time); err != nil {
			return err
		}
	}
	if err := checkText("category", p.Category, false); err != nil {
		return err
	}
	return checkOptionalText("description", p.Description)
}

// PlanUpdate carries the fields to change; nil fields are left alone.
// An empty Description or Time clears the value.
type PlanUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Time        *string
	Category    *string
}

func (p PlanUpdate) Validate() error {
	if p.Title != nil {
		if err := checkText("title", *p.Title, true); err != nil {
			return err
		}
	}
	if p.Date != nil && p.Date.IsZero() {
		return invalid("date", "required")
	}
	if p.Time != nil && *p.Time != "" {
		if _, err := ParseTimeOfDay(*p.Time); err != nil {
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

func (p PlanUpdate) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil && p.Category == nil
}
