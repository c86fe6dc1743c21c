package kafka

import "time"

// Events published BY Check-in Service

type TicketCheckedInEvent struct {
	TicketUUID     string    `json:"ticket_uuid"`
	EventID        int64     `json:"event_id"`
	EventShortName string    `json:"event_short_name"`
	Operator       string    `json:"operator"`
	CheckedInAt    time.Time `json:"checked_in_at"`
	Timestamp      time.Time `json:"timestamp"`
}

type TicketRevertedEvent struct {
	TicketUUID     string    `json:"ticket_uuid"`
	EventID        int64     `json:"event_id"`
	EventShortName string    `json:"event_short_name"`
	Operator       string    `json:"operator"`
	NewStatus      string    `json:"new_status"`
	RevertedAt     time.Time `json:"reverted_at"`
	Timestamp      time.Time `json:"timestamp"`
}

type OnSitePaymentEvent struct {
	TicketUUID     string    `json:"ticket_uuid"`
	EventID        int64     `json:"event_id"`
	EventShortName string    `json:"event_short_name"`
	ReservationID  string    `json:"reservation_id"`
	PriceCts       int64     `json:"price_cts"`
	Currency       string    `json:"currency"`
	Operator       string    `json:"operator"`
	Timestamp      time.Time `json:"timestamp"`
}

// Events consumed BY Check-in Service (from Ticket Service)

type TicketUpdatedEvent struct {
	TicketUUID string    `json:"ticket_uuid"`
	EventID    int64     `json:"event_id"`
	Timestamp  time.Time `json:"timestamp"`
}
