package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registrar-api/pkg/config"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestWithinTxCommits(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewTxManager(db)
	var inside bool
	err := m.WithinTx(context.Background(), func(ctx context.Context) error {
		_, inside = TxFrom(ctx)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, inside)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewTxManager(db)
	boom := errors.New("boom")
	err := m.WithinTx(context.Background(), func(ctx context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxReusesOuterTransaction(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewTxManager(db)
	err := m.WithinTx(context.Background(), func(ctx context.Context) error {
		outer, _ := TxFrom(ctx)
		return m.WithinTx(ctx, func(inner context.Context) error {
			tx, ok := TxFrom(inner)
			assert.True(t, ok)
			assert.Same(t, outer, tx)
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnFallsBackToDB(t *testing.T) {
	db, _ := newMock(t)
	assert.Same(t, db, Conn(context.Background(), db))
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "registrar", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=registrar sslmode=disable", dsn)
}
