package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/database"
)

// StatusLogRepository stores the append-only request status audit trail.
type StatusLogRepository struct {
	db *sqlx.DB
}

// NewStatusLogRepository constructs the repository.
func NewStatusLogRepository(db *sqlx.DB) *StatusLogRepository {
	return &StatusLogRepository{db: db}
}

// Append inserts an entry and fills its generated id.
func (r *StatusLogRepository) Append(ctx context.Context, entry *models.StatusLogEntry) error {
	const query = `INSERT INTO request_status_logs (request_id, old_status, new_status, changed_by, remarks, changed_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING log_id`
	row := database.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		entry.RequestID, entry.OldStatus, entry.NewStatus, entry.ChangedBy, entry.Remarks, entry.ChangedAt)
	if err := row.Scan(&entry.ID); err != nil {
		return fmt.Errorf("append status log: %w", err)
	}
	return nil
}

// List returns entries oldest first.
func (r *StatusLogRepository) List(ctx context.Context, filter models.StatusLogFilter) ([]models.StatusLogEntry, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT l.log_id, l.request_id, l.old_status, l.new_status, l.changed_by, l.remarks, l.changed_at
FROM request_status_logs l`)
	if filter.OwnerID != nil {
		query.WriteString("\nJOIN requests r ON r.request_id = l.request_id")
	}
	query.WriteString("\nWHERE 1=1")

	var args []interface{}
	if filter.RequestID != nil {
		args = append(args, *filter.RequestID)
		fmt.Fprintf(&query, " AND l.request_id = $%d", len(args))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		fmt.Fprintf(&query, " AND r.user_id = $%d", len(args))
	}
	query.WriteString(" ORDER BY l.changed_at ASC, l.log_id ASC")

	var entries []models.StatusLogEntry
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &entries, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list status logs: %w", err)
	}
	return entries, nil
}

// GetByID returns sql.ErrNoRows when the entry does not exist.
func (r *StatusLogRepository) GetByID(ctx context.Context, id int64) (*models.StatusLogEntry, error) {
	const query = `SELECT log_id, request_id, old_status, new_status, changed_by, remarks, changed_at
FROM request_status_logs WHERE log_id = $1`
	var entry models.StatusLogEntry
	if err := database.Conn(ctx, r.db).GetContext(ctx, &entry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get status log: %w", err)
	}
	return &entry, nil
}

// UpdateRemarks amends the remarks of an entry. Other columns are never written.
func (r *StatusLogRepository) UpdateRemarks(ctx context.Context, id int64, remarks *string) error {
	const query = `UPDATE request_status_logs SET remarks = $1 WHERE log_id = $2`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, remarks, id)
	if err != nil {
		return fmt.Errorf("update status log remarks: %w", err)
	}
	return expectAffected(res)
}
