package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type settingsRepository struct {
	db *sql.DB
	l  logger.Logger
}

func NewSettingsRepository(db *sql.DB, l logger.Logger) repository.SettingsRepository {
	return &settingsRepository{db: db, l: l}
}

// GetBool resolves an event-scoped flag. A missing row means the flag
// was never set and reads as false.
func (r *settingsRepository) GetBool(ctx context.Context, eventID int64, key string) (bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT c_value FROM event_configuration WHERE event_id = ? AND c_key = ?`, eventID, key).
		Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "repository.mysql.settingsRepository.GetBool: %v", err)
		return false, fmt.Errorf("failed to query event configuration: %w", err)
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return v, nil
}
