package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registrar-api/internal/models"
)

func TestStatusLogRepositoryAppend(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatusLogRepository(db)

	old := "PENDING"
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO request_status_logs")).
		WithArgs(int64(42), old, "APPROVED", int64(9), nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"log_id"}).AddRow(int64(100)))

	entry := &models.StatusLogEntry{RequestID: 42, OldStatus: &old, NewStatus: "APPROVED", ChangedBy: 9, ChangedAt: time.Now()}
	require.NoError(t, repo.Append(context.Background(), entry))
	assert.Equal(t, int64(100), entry.ID)
}

func TestStatusLogRepositoryListByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatusLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN requests r ON r.request_id = l.request_id\nWHERE 1=1 AND l.request_id = $1 AND r.user_id = $2 ORDER BY l.changed_at ASC")).
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"log_id", "request_id", "old_status", "new_status", "changed_by", "remarks", "changed_at"}).
			AddRow(int64(1), int64(42), nil, "PENDING", int64(9), nil, time.Now()))

	requestID, owner := int64(42), int64(7)
	entries, err := repo.List(context.Background(), models.StatusLogFilter{RequestID: &requestID, OwnerID: &owner})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].OldStatus)
}

func TestStatusLogRepositoryUpdateRemarksTouchesOnlyRemarks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatusLogRepository(db)

	remarks := "typo fixed"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE request_status_logs SET remarks = $1 WHERE log_id = $2")).
		WithArgs(remarks, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateRemarks(context.Background(), 1, &remarks))
	require.NoError(t, mock.ExpectationsWereMet())
}
