package mysql

import (
	"context"
	"database/sql"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/models"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type eventRepository struct {
	db *sql.DB
	l  logger.Logger
}

func NewEventRepository(db *sql.DB, l logger.Logger) repository.EventRepository {
	return &eventRepository{db: db, l: l}
}

func (r *eventRepository) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, short_name, display_name, private_key, time_zone, currency FROM event WHERE id = ?`, id)
	return scanEvent(row)
}

func (r *eventRepository) FindByShortName(ctx context.Context, shortName string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, short_name, display_name, private_key, time_zone, currency FROM event WHERE short_name = ?`, shortName)
	return scanEvent(row)
}
