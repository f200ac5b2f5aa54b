package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStore_ReadMissingCollection(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT records FROM documents WHERE collection = $1`)).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"records"}))

	records, err := s.Read(context.Background(), "users")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Read(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT records FROM documents WHERE collection = $1`)).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"records"}).AddRow([]byte(`[{"id":"1"},{"id":"2"}]`)))

	records, err := s.Read(context.Background(), "users")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLocksAndWrites(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("tokens").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("tokens").
		WillReturnRows(sqlmock.NewRows([]string{"records"}).AddRow([]byte(`[{"id":"1"}]`)))
	mock.ExpectExec(`UPDATE documents SET records`).
		WithArgs("tokens", `[{"id":"1"},{"id":"2"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Update(context.Background(), "tokens", appendRecord("2"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateErrorRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("tokens").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("tokens").
		WillReturnRows(sqlmock.NewRows([]string{"records"}).AddRow([]byte(`[]`)))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.Update(context.Background(), "tokens", func([]json.RawMessage) ([]json.RawMessage, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Replace(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`ON CONFLICT \(collection\) DO UPDATE`).
		WithArgs("healthTips", `[{"id":"z"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Replace(context.Background(), "healthTips", []json.RawMessage{json.RawMessage(`{"id":"z"}`)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
