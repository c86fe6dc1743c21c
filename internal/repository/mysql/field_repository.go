package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type fieldRepository struct {
	db *sql.DB
	l  logger.Logger
}

func NewFieldRepository(db *sql.DB, l logger.Logger) repository.FieldRepository {
	return &fieldRepository{db: db, l: l}
}

func (r *fieldRepository) FindValuesForTicket(ctx context.Context, ticketID int64, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	query := `SELECT tfc.field_name, tfv.field_value
		FROM ticket_field_value tfv
		INNER JOIN ticket_field_configuration tfc ON tfc.id = tfv.ticket_field_configuration_id_fk
		WHERE tfv.ticket_id_fk = ? AND tfc.field_name IN (` + placeholders(len(names)) + `)`
	args := []interface{}{ticketID}
	for _, n := range names {
		args = append(args, n)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.l.Errorf(ctx, "repository.mysql.fieldRepository.FindValuesForTicket: %v", err)
		return nil, fmt.Errorf("failed to query ticket field values: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(names))
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan ticket field value: %w", err)
		}
		out[name] = value
	}
	return out, rows.Err()
}
