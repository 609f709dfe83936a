package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/database"
)

// PaymentRepository reads payment proofs attached to requests.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindLatestByRequestID returns the newest payment for a request, or sql.ErrNoRows.
func (r *PaymentRepository) FindLatestByRequestID(ctx context.Context, requestID int64) (*models.Payment, error) {
	const query = `SELECT payment_id, request_id, proof_of_payment, remarks, created_at
FROM payments WHERE request_id = $1
ORDER BY created_at DESC, payment_id DESC
LIMIT 1`
	var payment models.Payment
	if err := database.Conn(ctx, r.db).GetContext(ctx, &payment, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get latest payment: %w", err)
	}
	return &payment, nil
}
