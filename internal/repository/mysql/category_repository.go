package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type categoryRepository struct {
	db *sql.DB
	l  logger.Logger
}

func NewCategoryRepository(db *sql.DB, l logger.Logger) repository.CategoryRepository {
	return &categoryRepository{db: db, l: l}
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*models.TicketCategory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, name, valid_checkin_from, valid_checkin_to FROM ticket_category WHERE id = ?`, id)
	return scanCategory(row)
}

func (r *categoryRepository) FindByEventIDAsMap(ctx context.Context, eventID int64) (map[int64]models.TicketCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, name, valid_checkin_from, valid_checkin_to FROM ticket_category WHERE event_id = ?`, eventID)
	if err != nil {
		r.l.Errorf(ctx, "repository.mysql.categoryRepository.FindByEventIDAsMap: %v", err)
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]models.TicketCategory)
	for rows.Next() {
		var (
			c        models.TicketCategory
			from, to sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.EventID, &c.Name, &from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if from.Valid {
			c.ValidCheckInFrom = &from.Time
		}
		if to.Valid {
			c.ValidCheckInTo = &to.Time
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}
