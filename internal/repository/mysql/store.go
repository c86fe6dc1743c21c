package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type mysqlStore struct {
	db *sql.DB
	l  logger.Logger
}

func NewStore(db *sql.DB, l logger.Logger) repository.Store {
	return &mysqlStore{db: db, l: l}
}

// InTx runs fn inside one database transaction. Row locks taken by
// FindTicketByUUIDForUpdate are released when the transaction ends, on
// every exit path including panics.
func (s *mysqlStore) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.l.Errorf(ctx, "repository.mysql.Store.InTx: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			dbTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&mysqlTx{tx: dbTx}); err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil {
			s.l.Errorf(ctx, "repository.mysql.Store.InTx: rollback: %v", rbErr)
		}
		return err
	}

	if err := dbTx.Commit(); err != nil {
		s.l.Errorf(ctx, "repository.mysql.Store.InTx: commit: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type mysqlTx struct {
	tx *sql.Tx
}

const ticketColumns = `id, uuid, event_id, category_id, tickets_reservation_id, status,
	first_name, last_name, email, final_price_cts, locked_assignment, last_modified`

func scanTicket(row *sql.Row) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.UUID, &t.EventID, &t.CategoryID, &t.ReservationID, &t.Status,
		&t.FirstName, &t.LastName, &t.Email, &t.FinalPriceCts, &t.LockedAssign, &t.LastModified,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}
	return &t, nil
}

func (m *mysqlTx) FindEventByID(ctx context.Context, id int64) (*models.Event, error) {
	row := m.tx.QueryRowContext(ctx,
		`SELECT id, short_name, display_name, private_key, time_zone, currency FROM event WHERE id = ?`, id)
	return scanEvent(row)
}

func (m *mysqlTx) FindEventByShortName(ctx context.Context, shortName string) (*models.Event, error) {
	row := m.tx.QueryRowContext(ctx,
		`SELECT id, short_name, display_name, private_key, time_zone, currency FROM event WHERE short_name = ?`, shortName)
	return scanEvent(row)
}

func (m *mysqlTx) FindTicketByUUIDForUpdate(ctx context.Context, uuid string) (*models.Ticket, error) {
	row := m.tx.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE uuid = ? FOR UPDATE`, uuid)
	return scanTicket(row)
}

func (m *mysqlTx) FindCategoryByID(ctx context.Context, id int64) (*models.TicketCategory, error) {
	row := m.tx.QueryRowContext(ctx,
		`SELECT id, event_id, name, valid_checkin_from, valid_checkin_to FROM ticket_category WHERE id = ?`, id)
	return scanCategory(row)
}

func (m *mysqlTx) FindReservationByID(ctx context.Context, id string) (*models.TicketReservation, error) {
	var r models.TicketReservation
	err := m.tx.QueryRowContext(ctx,
		`SELECT id, payment_method FROM tickets_reservation WHERE id = ?`, id).
		Scan(&r.ID, &r.PaymentMethod)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reservation: %w", err)
	}
	return &r, nil
}

func (m *mysqlTx) UpdateTicketStatus(ctx context.Context, uuid string, status models.TicketStatus) error {
	res, err := m.tx.ExecContext(ctx,
		`UPDATE ticket SET status = ?, last_modified = NOW() WHERE uuid = ?`, status, uuid)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (m *mysqlTx) ToggleTicketLocking(ctx context.Context, ticketID, categoryID int64, locked bool) error {
	if _, err := m.tx.ExecContext(ctx,
		`UPDATE ticket SET locked_assignment = ? WHERE id = ? AND category_id = ?`,
		locked, ticketID, categoryID); err != nil {
		return fmt.Errorf("failed to toggle ticket locking: %w", err)
	}
	return nil
}

func (m *mysqlTx) InsertScanAudit(ctx context.Context, audit models.ScanAudit) error {
	if _, err := m.tx.ExecContext(ctx,
		`INSERT INTO scan_audit (ticket_uuid, event_id, scan_ts, operator, scan_result, operation)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		audit.TicketUUID, audit.EventID, audit.ScanTime, audit.Operator, audit.Result, audit.Operation); err != nil {
		return fmt.Errorf("failed to insert scan audit: %w", err)
	}
	return nil
}

func (m *mysqlTx) InsertAudit(ctx context.Context, entry models.AuditEntry) error {
	if _, err := m.tx.ExecContext(ctx,
		`INSERT INTO auditing (reservation_id, operator, event_id, event_type, event_time, entity_type, entity_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ReservationID, entry.Operator, entry.EventID, entry.EventType,
		entry.EventTime, entry.EntityType, entry.EntityID); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (m *mysqlTx) InsertPaymentTransaction(ctx context.Context, txn models.PaymentTransaction) error {
	if _, err := m.tx.ExecContext(ctx,
		`INSERT INTO b_transaction (reservation_id, payment_proxy, price_cts, currency, t_timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		txn.ReservationID, txn.PaymentProxy, txn.PriceCts, txn.Currency, txn.Timestamp); err != nil {
		return fmt.Errorf("failed to insert payment transaction: %w", err)
	}
	return nil
}

func scanEvent(row *sql.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.ShortName, &e.DisplayName, &e.PrivateKey, &e.TimeZone, &e.Currency)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &e, nil
}

func scanCategory(row *sql.Row) (*models.TicketCategory, error) {
	var (
		c        models.TicketCategory
		from, to sql.NullTime
	)
	err := row.Scan(&c.ID, &c.EventID, &c.Name, &from, &to)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	if from.Valid {
		c.ValidCheckInFrom = &from.Time
	}
	if to.Valid {
		c.ValidCheckInTo = &to.Time
	}
	return &c, nil
}
