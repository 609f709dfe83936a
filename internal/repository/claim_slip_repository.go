package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/database"
)

// ClaimSlipRepository stores claim slips, at most one per request.
type ClaimSlipRepository struct {
	db *sqlx.DB
}

// NewClaimSlipRepository constructs the repository.
func NewClaimSlipRepository(db *sqlx.DB) *ClaimSlipRepository {
	return &ClaimSlipRepository{db: db}
}

// FindByRequestID returns sql.ErrNoRows when no slip was issued.
func (r *ClaimSlipRepository) FindByRequestID(ctx context.Context, requestID int64) (*models.ClaimSlip, error) {
	const query = `SELECT claim_slip_id, request_id, claim_number, date_ready, issued_by, created_at
FROM claim_slips WHERE request_id = $1`
	var slip models.ClaimSlip
	if err := database.Conn(ctx, r.db).GetContext(ctx, &slip, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get claim slip: %w", err)
	}
	return &slip, nil
}

// CreateIfAbsent inserts slip unless one already exists for the request.
// It reports whether a row was written; a lost race is not an error.
func (r *ClaimSlipRepository) CreateIfAbsent(ctx context.Context, slip *models.ClaimSlip) (bool, error) {
	const query = `INSERT INTO claim_slips (request_id, claim_number, date_ready, issued_by, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (request_id) DO NOTHING
RETURNING claim_slip_id`
	row := database.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		slip.RequestID, slip.ClaimNumber, slip.DateReady, slip.IssuedBy, slip.CreatedAt)
	if err := row.Scan(&slip.ID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("create claim slip: %w", err)
	}
	return true, nil
}
