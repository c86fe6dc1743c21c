// Package checkin holds the pure decision function that decides
// whether a scanned credential may be admitted.
package checkin

import (
	"fmt"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/ticketcode"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/util"
)

// Evaluate computes the check-in verdict for a presented credential.
// It is a pure function of its inputs: no I/O, no clock access (now is
// a parameter), so identical inputs always produce identical verdicts.
//
// The rules below are evaluated in order and the first match wins.
// The order is contractual: an expired check-in window is reported even
// when the code is also wrong, and a wrong code is reported before a
// must-pay state. Reordering breaks the scanning UIs.
func Evaluate(event *models.Event, ticket *models.Ticket, category *models.TicketCategory, code string, now time.Time) models.TicketAndCheckInResult {
	if event == nil {
		return models.TicketAndCheckInResult{
			Result: models.NewCheckInResult(models.CheckInStatusEventNotFound, "Event not found"),
		}
	}

	if ticket == nil {
		return models.TicketAndCheckInResult{
			Result: models.NewCheckInResult(models.CheckInStatusTicketNotFound, "Ticket not found"),
		}
	}

	if code == "" {
		return models.TicketAndCheckInResult{
			Result: models.NewCheckInResult(models.CheckInStatusEmptyTicketCode, "Missing ticket code"),
		}
	}

	loc := event.Location()
	localNow := now.In(loc)
	if category != nil && !category.HasValidCheckIn(now) {
		from := util.FormatCheckInBound(category.ValidCheckInFrom, loc)
		to := util.FormatCheckInBound(category.ValidCheckInTo, loc)
		msg := fmt.Sprintf("Invalid check-in date: valid range for category %s is from %s to %s, current time is: %s",
			category.Name, from, to, localNow.Format(util.CheckInDateFormat))
		return models.TicketAndCheckInResult{
			Ticket: ticket,
			Result: models.NewCheckInResult(models.CheckInStatusInvalidCheckInDate, msg),
		}
	}

	if !ticketcode.Verify(code, ticket, event.PrivateKey) {
		return models.TicketAndCheckInResult{
			Result: models.NewCheckInResult(models.CheckInStatusInvalidTicketCode, "Ticket qr code does not match"),
		}
	}

	switch ticket.Status {
	case models.TicketStatusToBePaid:
		return models.TicketAndCheckInResult{
			Ticket: ticket,
			Result: models.NewOnSitePaymentResult(models.CheckInStatusMustPay, "Must pay for ticket", ticket.FinalPriceCts, event.Currency),
		}
	case models.TicketStatusCheckedIn:
		return models.TicketAndCheckInResult{
			Ticket: ticket,
			Result: models.NewCheckInResult(models.CheckInStatusAlreadyCheckIn, "Error: already checked in"),
		}
	case models.TicketStatusAcquired:
		return models.TicketAndCheckInResult{
			Ticket: ticket,
			Result: models.NewCheckInResult(models.CheckInStatusOKReadyToBeCheckedIn, "Ready to be checked in"),
		}
	default:
		msg := fmt.Sprintf("Invalid ticket state, expected ACQUIRED state, received %s", ticket.Status)
		return models.TicketAndCheckInResult{
			Ticket: ticket,
			Result: models.NewCheckInResult(models.CheckInStatusInvalidTicketState, msg),
		}
	}
}
