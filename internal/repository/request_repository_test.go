package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/database"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

var requestRowColumns = []string{"request_id", "user_id", "document_id", "status", "copies", "date_needed", "date_ready", "created_at", "updated_at"}

func TestRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO requests")).
		WithArgs(int64(7), int64(3), models.RequestStatusPending, 2, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"request_id"}).AddRow(int64(42)))

	req := &models.Request{UserID: 7, DocumentID: 3, Status: models.RequestStatusPending, Copies: 2}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.Equal(t, int64(42), req.ID)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Equal(t, req.CreatedAt, req.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE request_id = $1")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	req, err := repo.GetByID(context.Background(), 9)
	assert.Nil(t, req)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRequestRepositoryGetForUpdateUsesTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)
	txm := database.NewTxManager(db)

	created := time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE request_id = $1 FOR UPDATE")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow(int64(42), int64(7), int64(3), "PENDING", 2, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), nil, created, created))
	mock.ExpectCommit()

	var locked *models.Request
	err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
		var err error
		locked, err = repo.GetForUpdate(ctx, 42)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Equal(t, models.RequestStatusPending, locked.Status)
	require.NotNil(t, locked.DateNeeded)
	assert.Equal(t, "2025-06-10", locked.DateNeeded.String())
	assert.Nil(t, locked.DateReady)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE 1=1 AND user_id = $1 AND status = ANY($2) ORDER BY created_at DESC")).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow(int64(1), int64(7), int64(3), "APPROVED", 1, nil, now, now, now))

	userID := int64(7)
	items, err := repo.List(context.Background(), models.RequestFilter{UserID: &userID, Status: []models.RequestStatus{models.RequestStatusApproved}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.RequestStatusApproved, items[0].Status)
	require.NotNil(t, items[0].DateReady)
}

func TestRequestRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = $1, updated_at = $2 WHERE request_id = $3")).
		WithArgs(models.RequestStatusApproved, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 5, models.RequestStatusApproved, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRequestRepositorySetDateReadyOnlyWhenUnset(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	readyAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET date_ready = $1 WHERE request_id = $2 AND date_ready IS NULL")).
		WithArgs(readyAt, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetDateReady(context.Background(), 42, readyAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateFieldsAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET document_id = $1, copies = $2, date_needed = $3, updated_at = $4")).
		WithArgs(int64(4), 3, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requests WHERE request_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.Request{ID: 42, DocumentID: 4, Copies: 3, UpdatedAt: time.Now()}
	require.NoError(t, repo.UpdateFields(context.Background(), req))
	require.NoError(t, repo.Delete(context.Background(), 42))
	require.NoError(t, mock.ExpectationsWereMet())
}
