package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registrar-api/internal/models"
)

func TestClaimSlipRepositoryCreateIfAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimSlipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (request_id) DO NOTHING")).
		WithArgs(int64(42), "REQ-2025-042", sqlmock.AnyArg(), int64(9), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"claim_slip_id"}).AddRow(int64(1)))

	slip := &models.ClaimSlip{
		RequestID:   42,
		ClaimNumber: "REQ-2025-042",
		DateReady:   models.NewDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		IssuedBy:    9,
		CreatedAt:   time.Now(),
	}
	created, err := repo.CreateIfAbsent(context.Background(), slip)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), slip.ID)
}

func TestClaimSlipRepositoryCreateIfAbsentConflictIsNoop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimSlipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO claim_slips")).
		WillReturnRows(sqlmock.NewRows([]string{"claim_slip_id"}))

	created, err := repo.CreateIfAbsent(context.Background(), &models.ClaimSlip{RequestID: 42, ClaimNumber: "REQ-2025-042"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestClaimSlipRepositoryFindByRequestID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimSlipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM claim_slips WHERE request_id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"claim_slip_id", "request_id", "claim_number", "date_ready", "issued_by", "created_at"}).
			AddRow(int64(1), int64(42), "REQ-2025-042", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), int64(9), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM claim_slips WHERE request_id = $1")).
		WithArgs(int64(43)).
		WillReturnError(sql.ErrNoRows)

	slip, err := repo.FindByRequestID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", slip.DateReady.String())

	_, err = repo.FindByRequestID(context.Background(), 43)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
