package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncSequences(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(pg_get_serial_sequence('countries', 'id'), coalesce(max(id), 0) + 1, false) FROM countries")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("pg_get_serial_sequence('cities', 'id')")).
		WillReturnError(errors.New("relation \"cities\" does not exist"))
	mock.ExpectExec(regexp.QuoteMeta("pg_get_serial_sequence('areas', 'id')")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	failed, err := SyncSequences(context.Background(), db, []string{"countries", "cities", "areas"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
	require.Len(t, failed, 1)
	assert.Contains(t, failed["cities"].Error(), "does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncSequencesAllTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range SequenceTables {
		mock.ExpectExec(regexp.QuoteMeta("pg_get_serial_sequence('" + table + "', 'id')")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	failed, err := SyncSequences(context.Background(), db, SequenceTables)
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
