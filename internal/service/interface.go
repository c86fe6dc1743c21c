package service

import (
	"context"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
)

// CheckInService coordinates every mutation of a ticket's check-in
// state. All writes belonging to one scan commit or roll back together.
type CheckInService interface {
	CheckIn(ctx context.Context, eventID int64, ticketUUID, code, operator string) (models.TicketAndCheckInResult, error)
	CheckInByShortName(ctx context.Context, shortName, ticketUUID, code, operator string) (models.TicketAndCheckInResult, error)
	// EvaluateTicketStatus computes the verdict a scan would produce
	// without mutating anything. The result is advisory: it may be stale
	// by the time a real scan happens.
	EvaluateTicketStatus(ctx context.Context, eventID int64, ticketUUID, code string) (models.TicketAndCheckInResult, error)
	EvaluateTicketStatusByShortName(ctx context.Context, shortName, ticketUUID, code string) (models.TicketAndCheckInResult, error)
	// ManualCheckIn forces a ticket in: no credential required, the
	// operator vouches for the attendee. Returns false when the ticket
	// cannot be checked in from its current state.
	ManualCheckIn(ctx context.Context, eventID int64, ticketUUID, operator string) (bool, error)
	// RevertCheckIn undoes a completed check-in. The ticket returns to
	// TO_BE_PAID when its reservation is paid on site, ACQUIRED otherwise.
	RevertCheckIn(ctx context.Context, eventID int64, ticketUUID, operator string) (bool, error)
	// ConfirmOnSitePayment settles an on-site payment and immediately
	// checks the ticket in, as one unit of work.
	ConfirmOnSitePayment(ctx context.Context, shortName, ticketUUID, code, operator string) (models.TicketAndCheckInResult, error)
}

// AttendeeExportService builds the encrypted attendee bundles consumed
// by offline scanning devices.
type AttendeeExportService interface {
	// GetAttendeesIdentifiers lists the ids of attendee tickets,
	// optionally restricted to those modified after changedSince.
	GetAttendeesIdentifiers(ctx context.Context, eventID int64, changedSince *time.Time) ([]int64, error)
	// GetAttendeesInformation loads the plaintext export rows for the
	// given ticket ids.
	GetAttendeesInformation(ctx context.Context, eventID int64, ids []int64) ([]models.FullTicketInfo, error)
	// EncryptedAttendeesInformation builds the full offline bundle:
	// lookup key to sealed payload, decryptable only with the matching
	// ticket credential.
	EncryptedAttendeesInformation(ctx context.Context, eventID int64, additionalFields []string) (map[string]string, error)
	// HandleTicketUpdated drops the cached bundle of the ticket's event
	// so the next sync sees fresh data.
	HandleTicketUpdated(ctx context.Context, eventID int64) error
}

// SettingsService answers the event-scoped feature flags that gate
// check-in behaviour.
type SettingsService interface {
	IsOfflineCheckInEnabled(ctx context.Context, eventID int64) (bool, error)
	IsOfflineCheckInAndLabelPrintingEnabled(ctx context.Context, eventID int64) (bool, error)
}

// PaymentService records payment movements produced at the check-in
// desk. RegisterOnSiteTransaction writes through the caller's unit of
// work so the payment row and the status change commit together.
type PaymentService interface {
	RegisterOnSiteTransaction(ctx context.Context, tx repository.Tx, event *models.Event, reservationID string, priceCts int64) error
}

// EventPublisher announces committed check-in state changes. Publishing
// is best effort and must never influence the outcome of the scan.
type EventPublisher interface {
	PublishCheckedIn(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error
	PublishReverted(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error
	PublishOnSitePayment(ctx context.Context, event *models.Event, ticket *models.Ticket, operator string) error
}
