package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE savings_goals").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE savings_goals SET current_amount = $1", "10")
		return err
	})
	assert.NoError(t, err)
}

func TestRunInTransaction_FunctionErrorRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	want := errors.New("insufficient funds")
	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return want
	})
	assert.Equal(t, want, err)
}

func TestRunInTransaction_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	want := errors.New("too many connections")
	mock.ExpectBegin().WillReturnError(want)

	called := false
	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, want)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.False(t, called)
}

func TestRunInTransaction_CommitError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	want := errors.New("serialization failure")
	mock.ExpectCommit().WillReturnError(want)

	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error { return nil })
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.ErrorIs(t, err, want)
}

func TestRunInTransaction_RollbackErrorKeepsBoth(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	rbErr := errors.New("rollback failed")
	mock.ExpectRollback().WillReturnError(rbErr)

	fnErr := errors.New("function failed")
	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error { return fnErr })
	assert.ErrorIs(t, err, fnErr)
	assert.ErrorIs(t, err, rbErr)
}

func TestRunInTransaction_PanicRollsBackAndRepanics(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			panic("boom")
		})
	})
}
