package auth

import "slices"

// RejectionMessage is the fixed reply for callers outside the household.
const RejectionMessage = "❌ Доступ запрещен. Этот бот предназначен только для определенных пользователей."

// AllowList is the static set of household participants.
type AllowList struct {
	ids []int64
}

// NewAllowList returns an allow-list of the given participant IDs, in order.
// Duplicates and zero IDs are dropped.
func NewAllowList(ids ...int64) *AllowList {
	a := &AllowList{}
	for _, id := range ids {
		if id != 0 && !slices.Contains(a.ids, id) {
			a.ids = append(a.ids, id)
		}
	}
	return a
}

// IsAllowed reports whether userID belongs to the household.
func (a *AllowList) IsAllowed(userID int64) bool {
	return slices.Contains(a.ids, userID)
}

// Participants returns a copy of the participant IDs.
func (a *AllowList) Participants() []int64 {
	return slices.Clone(a.ids)
}

// Partner returns the first participant other than userID.
func (a *AllowList) Partner(userID int64) (int64, bool) {
	if !a.IsAllowed(userID) {
		return 0, false
	}
	for _, id := range a.ids {
		if id != userID {
			return id, true
		}
	}
	return 0, false
}
