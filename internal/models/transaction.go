package models

import "time"

// PaymentTransaction is the row registered when an on-site payment is
// confirmed at the gate.
type PaymentTransaction struct {
	ReservationID string       `json:"reservation_id"`
	PaymentProxy  PaymentProxy `json:"payment_proxy"`
	PriceCts      int64        `json:"price_cts"`
	Currency      string       `json:"currency"`
	Timestamp     time.Time    `json:"timestamp"`
}
