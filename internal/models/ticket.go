package models

import (
	"strings"
	"time"
)

type TicketStatus string

const (
	TicketStatusFree      TicketStatus = "FREE"
	TicketStatusPending   TicketStatus = "PENDING"
	TicketStatusToBePaid  TicketStatus = "TO_BE_PAID"
	TicketStatusAcquired  TicketStatus = "ACQUIRED"
	TicketStatusCheckedIn TicketStatus = "CHECKED_IN"
	TicketStatusCancelled TicketStatus = "CANCELLED"
	TicketStatusReleased  TicketStatus = "RELEASED"
)

type Ticket struct {
	ID            int64        `json:"id"`
	UUID          string       `json:"uuid"`
	EventID       int64        `json:"event_id"`
	CategoryID    int64        `json:"category_id"`
	ReservationID string       `json:"tickets_reservation_id"`
	Status        TicketStatus `json:"status"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Email         string       `json:"email"`
	FinalPriceCts int64        `json:"final_price_cts"`
	LockedAssign  bool         `json:"locked_assignment"`
	LastModified  time.Time    `json:"last_modified"`
}

func (t *Ticket) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

func (t *Ticket) IsCheckedIn() bool {
	return t.Status == TicketStatusCheckedIn
}

// FullTicketInfo is a ticket joined with the name of its category, as
// needed by the offline attendee export.
type FullTicketInfo struct {
	Ticket
	CategoryName string `json:"category_name"`
}
