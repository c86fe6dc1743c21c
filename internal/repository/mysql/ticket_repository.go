package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

// Statuses a ticket can hold while being assigned to an attendee. Only
// these are eligible for check-in listings and offline export.
var assignedStatuses = []string{
	string(models.TicketStatusAcquired),
	string(models.TicketStatusToBePaid),
	string(models.TicketStatusCheckedIn),
}

type ticketRepository struct {
	db *sql.DB
	l  logger.Logger
}

func NewTicketRepository(db *sql.DB, l logger.Logger) repository.TicketRepository {
	return &ticketRepository{db: db, l: l}
}

func (r *ticketRepository) FindByUUID(ctx context.Context, uuid string) (*models.Ticket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE uuid = ?`, uuid)
	return scanTicket(row)
}

func (r *ticketRepository) FindIDsAssignedByEventID(ctx context.Context, eventID int64, changedSince *time.Time) ([]int64, error) {
	query := `SELECT id FROM ticket
		WHERE event_id = ? AND full_name IS NOT NULL AND full_name <> ''
		AND status IN (` + placeholders(len(assignedStatuses)) + `)`
	args := []interface{}{eventID}
	for _, s := range assignedStatuses {
		args = append(args, s)
	}
	if changedSince != nil {
		query += ` AND last_modified > ?`
		args = append(args, *changedSince)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.l.Errorf(ctx, "repository.mysql.ticketRepository.FindIDsAssignedByEventID: %v", err)
		return nil, fmt.Errorf("failed to query assigned ticket ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ticket id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ticketRepository) FindFullByEventID(ctx context.Context, eventID int64, ids []int64) ([]models.FullTicketInfo, error) {
	query := `SELECT t.id, t.uuid, t.event_id, t.category_id, t.tickets_reservation_id, t.status,
		t.first_name, t.last_name, t.email, t.final_price_cts, t.locked_assignment, t.last_modified,
		tc.name
		FROM ticket t
		INNER JOIN ticket_category tc ON tc.id = t.category_id
		WHERE t.event_id = ? AND t.full_name IS NOT NULL AND t.full_name <> ''
		AND t.status IN (` + placeholders(len(assignedStatuses)) + `)`
	args := []interface{}{eventID}
	for _, s := range assignedStatuses {
		args = append(args, s)
	}
	if len(ids) > 0 {
		query += ` AND t.id IN (` + placeholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.l.Errorf(ctx, "repository.mysql.ticketRepository.FindFullByEventID: %v", err)
		return nil, fmt.Errorf("failed to query full tickets: %w", err)
	}
	defer rows.Close()

	var out []models.FullTicketInfo
	for rows.Next() {
		var info models.FullTicketInfo
		if err := rows.Scan(
			&info.ID, &info.UUID, &info.EventID, &info.CategoryID, &info.ReservationID, &info.Status,
			&info.FirstName, &info.LastName, &info.Email, &info.FinalPriceCts, &info.LockedAssign, &info.LastModified,
			&info.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan full ticket: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
