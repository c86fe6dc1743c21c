package models

import "time"

type TicketCategory struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
	// Optional check-in validity window. A nil bound means the window
	// is unbounded on that side.
	ValidCheckInFrom *time.Time `json:"valid_checkin_from,omitempty"`
	ValidCheckInTo   *time.Time `json:"valid_checkin_to,omitempty"`
}

// HasValidCheckIn reports whether now falls inside the category's
// check-in window [from, to).
func (tc *TicketCategory) HasValidCheckIn(now time.Time) bool {
	if tc.ValidCheckInFrom != nil && now.Before(*tc.ValidCheckInFrom) {
		return false
	}
	if tc.ValidCheckInTo != nil && !now.Before(*tc.ValidCheckInTo) {
		return false
	}
	return true
}
