// Package repository declares the storage capabilities the check-in
// services depend on. Implementations live in the driver-specific
// subpackages (mysql for the authoritative store, redis for the
// offline-bundle cache).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("repository: not found")

// Store opens serializable units of work against the authoritative
// ticket store. Everything done through the Tx passed to fn commits or
// rolls back as one: a status write without its audit row is never
// observable.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transaction-scoped storage handle. FindTicketByUUIDForUpdate
// takes an exclusive row lock held until the unit of work ends, so at
// most one mutation per ticket is in flight at any time.
type Tx interface {
	FindEventByID(ctx context.Context, id int64) (*models.Event, error)
	FindEventByShortName(ctx context.Context, shortName string) (*models.Event, error)
	FindTicketByUUIDForUpdate(ctx context.Context, uuid string) (*models.Ticket, error)
	FindCategoryByID(ctx context.Context, id int64) (*models.TicketCategory, error)
	FindReservationByID(ctx context.Context, id string) (*models.TicketReservation, error)
	UpdateTicketStatus(ctx context.Context, uuid string, status models.TicketStatus) error
	ToggleTicketLocking(ctx context.Context, ticketID, categoryID int64, locked bool) error
	InsertScanAudit(ctx context.Context, audit models.ScanAudit) error
	InsertAudit(ctx context.Context, entry models.AuditEntry) error
	InsertPaymentTransaction(ctx context.Context, txn models.PaymentTransaction) error
}

// Plain read access, used by the non-locking evaluation path and the
// offline export. These reads may race with concurrent mutations; their
// results are advisory.

type EventRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	FindByShortName(ctx context.Context, shortName string) (*models.Event, error)
}

type TicketRepository interface {
	FindByUUID(ctx context.Context, uuid string) (*models.Ticket, error)
	// FindIDsAssignedByEventID lists assigned ticket ids for an event,
	// optionally restricted to tickets modified after changedSince.
	FindIDsAssignedByEventID(ctx context.Context, eventID int64, changedSince *time.Time) ([]int64, error)
	// FindFullByEventID loads tickets joined with their category name.
	// An empty ids slice loads every assigned ticket of the event.
	FindFullByEventID(ctx context.Context, eventID int64, ids []int64) ([]models.FullTicketInfo, error)
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*models.TicketCategory, error)
	FindByEventIDAsMap(ctx context.Context, eventID int64) (map[int64]models.TicketCategory, error)
}

// FieldRepository resolves the per-ticket additional field values the
// export includes; which fields exist is not this service's concern.
type FieldRepository interface {
	FindValuesForTicket(ctx context.Context, ticketID int64, names []string) (map[string]string, error)
}

// SettingsRepository resolves event-scoped boolean configuration flags.
type SettingsRepository interface {
	GetBool(ctx context.Context, eventID int64, key string) (bool, error)
}

// ExportCache stores generated offline bundles so repeated device syncs
// do not re-encrypt the whole attendee list.
type ExportCache interface {
	StoreBundle(ctx context.Context, eventID int64, bundle map[string]string, ttl time.Duration) error
	GetBundle(ctx context.Context, eventID int64) (map[string]string, error)
	InvalidateBundle(ctx context.Context, eventID int64) error
}
