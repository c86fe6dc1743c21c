package models

import "github.com/shopspring/decimal"

// CheckInStatus is the closed set of outcomes a scan evaluation can
// produce. Downstream UIs branch on these values, so both the set and
// the precedence the decision engine applies them in are contractual.
type CheckInStatus string

const (
	CheckInStatusEventNotFound        CheckInStatus = "EVENT_NOT_FOUND"
	CheckInStatusTicketNotFound       CheckInStatus = "TICKET_NOT_FOUND"
	CheckInStatusEmptyTicketCode      CheckInStatus = "EMPTY_TICKET_CODE"
	CheckInStatusInvalidCheckInDate   CheckInStatus = "INVALID_TICKET_CATEGORY_CHECK_IN_DATE"
	CheckInStatusInvalidTicketCode    CheckInStatus = "INVALID_TICKET_CODE"
	CheckInStatusMustPay              CheckInStatus = "MUST_PAY"
	CheckInStatusAlreadyCheckIn       CheckInStatus = "ALREADY_CHECK_IN"
	CheckInStatusInvalidTicketState   CheckInStatus = "INVALID_TICKET_STATE"
	CheckInStatusOKReadyToBeCheckedIn CheckInStatus = "OK_READY_TO_BE_CHECKED_IN"
	CheckInStatusSuccess              CheckInStatus = "SUCCESS"
)

// CheckInResult is an ephemeral verdict: a status plus an operator
// facing message, and, for MUST_PAY, the amount still due.
type CheckInResult struct {
	Status    CheckInStatus   `json:"status"`
	Message   string          `json:"message"`
	DueAmount decimal.Decimal `json:"due_amount,omitempty"`
	Currency  string          `json:"currency,omitempty"`
}

func NewCheckInResult(status CheckInStatus, message string) CheckInResult {
	return CheckInResult{Status: status, Message: message}
}

// NewOnSitePaymentResult carries the outstanding amount in currency
// units (cents converted) so the caller can drive a payment flow.
func NewOnSitePaymentResult(status CheckInStatus, message string, priceCts int64, currency string) CheckInResult {
	return CheckInResult{
		Status:    status,
		Message:   message,
		DueAmount: decimal.New(priceCts, -2),
		Currency:  currency,
	}
}

// TicketAndCheckInResult pairs a verdict with the resolved ticket, when
// one was resolved.
type TicketAndCheckInResult struct {
	Ticket *Ticket       `json:"ticket,omitempty"`
	Result CheckInResult `json:"result"`
}
