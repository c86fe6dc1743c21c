package models

type PaymentProxy string

const (
	PaymentProxyStripe  PaymentProxy = "STRIPE"
	PaymentProxyOnSite  PaymentProxy = "ON_SITE"
	PaymentProxyOffline PaymentProxy = "OFFLINE"
	PaymentProxyNone    PaymentProxy = "NONE"
)

type TicketReservation struct {
	ID            string       `json:"id"`
	PaymentMethod PaymentProxy `json:"payment_method"`
}
