package sqlx_test

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "ratereminder/adapters/sqlx"
)

const container = "UniversalRateReminder"

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

func TestSQLMock_Get(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT name, value FROM reminder_values WHERE container = \$1`).
		WithArgs(container).
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).
			AddRow("Count", "4").
			AddRow("Dismissed", "false").
			AddRow("AppVersion", "1.0.0.0"))

	values, ok, err := store.Get(context.Background(), container)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, map[string]string{"Count": "4", "Dismissed": "false", "AppVersion": "1.0.0.0"}, values)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Get_Missing(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT name, value FROM reminder_values`).
		WithArgs(container).
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}))

	_, ok, err := store.Get(context.Background(), container)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Put_ReplacesInTransaction(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM reminder_values WHERE container = \$1`).
		WithArgs(container).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO reminder_values`).
		WithArgs(container, "AppVersion", "1.0.0.0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO reminder_values`).
		WithArgs(container, "Count", "5", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO reminder_values`).
		WithArgs(container, "Dismissed", "true", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.Put(context.Background(), container, map[string]string{
		"Count":      "5",
		"Dismissed":  "true",
		"AppVersion": "1.0.0.0",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Put_RollsBackOnError(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM reminder_values`).
		WithArgs(container).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO reminder_values`).
		WithArgs(container, "Count", "1", sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := store.Put(context.Background(), container, map[string]string{"Count": "1"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Delete(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM reminder_values WHERE container = \$1`).
		WithArgs(container).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, store.Delete(context.Background(), container))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, storage.DefaultConfig(storage.DriverSQLite).Validate())
	require.Error(t, storage.DefaultConfig(storage.DriverPostgres).Validate(), "postgres has no default dsn")
	require.Error(t, storage.Config{Driver: "oracle", DSN: "x"}.Validate())
}
