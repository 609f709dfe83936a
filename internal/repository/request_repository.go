package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/database"
)

const requestColumns = `request_id, user_id, document_id, status, copies, date_needed, date_ready, created_at, updated_at`

// RequestRepository persists document requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a request and fills its generated id and timestamps.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	const query = `INSERT INTO requests (user_id, document_id, status, copies, date_needed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING request_id`
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt
	row := database.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		req.UserID, req.DocumentID, req.Status, req.Copies, req.DateNeeded, req.CreatedAt, req.UpdatedAt)
	if err := row.Scan(&req.ID); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// GetByID returns sql.ErrNoRows when the request does not exist.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE request_id = $1`
	var req models.Request
	if err := database.Conn(ctx, r.db).GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &req, nil
}

// GetForUpdate loads and row-locks a request. Only meaningful inside a transaction.
func (r *RequestRepository) GetForUpdate(ctx context.Context, id int64) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE request_id = $1 FOR UPDATE`
	var req models.Request
	if err := database.Conn(ctx, r.db).GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock request: %w", err)
	}
	return &req, nil
}

// List returns requests newest first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + requestColumns + ` FROM requests WHERE 1=1`)

	var args []interface{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		fmt.Fprintf(&query, " AND user_id = $%d", len(args))
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		fmt.Fprintf(&query, " AND status = ANY($%d)", len(args))
	}
	query.WriteString(" ORDER BY created_at DESC, request_id DESC")

	var items []models.Request
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return items, nil
}

// UpdateStatus persists a new status and stamps updated_at.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, at time.Time) error {
	const query = `UPDATE requests SET status = $1, updated_at = $2 WHERE request_id = $3`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, status, at, id)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return expectAffected(res)
}

// SetDateReady stamps date_ready only while it is still unset.
func (r *RequestRepository) SetDateReady(ctx context.Context, id int64, readyAt time.Time) error {
	const query = `UPDATE requests SET date_ready = $1 WHERE request_id = $2 AND date_ready IS NULL`
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, query, readyAt, id); err != nil {
		return fmt.Errorf("set request date ready: %w", err)
	}
	return nil
}

// UpdateFields writes the editable fields of a request.
func (r *RequestRepository) UpdateFields(ctx context.Context, req *models.Request) error {
	const query = `UPDATE requests
SET document_id = :document_id, copies = :copies, date_needed = :date_needed, updated_at = :updated_at
WHERE request_id = :request_id`
	res, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a request.
func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM requests WHERE request_id = $1`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return expectAffected(res)
}

// expectAffected maps a zero-row write to sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
