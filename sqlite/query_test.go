package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueries(t *testing.T) {
	testDir := t.TempDir()

	db, err := Open(filepath.Join(testDir, "sqlite.db"))
	require.Nil(t, err)

	query := Query{
		Query: `
		create table if not exists logs (
			id integer not null primary key autoincrement,
			message text not null
		);`,
	}

	affected, err := ExecuteQuery(db, query)
	require.Nil(t, err)
	require.Zero(t, affected)

	query.Query = "select message from logs where id = 1;"

	var value string
	err = QueryRow(db, query, &value)
	require.NotNil(t, err)
	require.ErrorIs(t, err, ErrQueryReturnedNoRows)

	query.Query = "select message from logs order by id;"

	var messages []string

	callback := func(scan ScanCallback) error {
		var message string
		err := scan(&message)
		messages = append(messages, message)

		return err
	}

	err = QueryRows(db, query, callback)
	require.NotNil(t, err)
	require.ErrorIs(t, err, ErrQueryReturnedNoRows)

	query.Query = "insert into logs (message) values (?);"
	query.Arguments = []any{"first"}

	id, err := ExecuteInsert(db, query)
	require.Nil(t, err)
	require.Equal(t, int64(1), id)

	query.Query = "select message from logs where id = 1;"
	query.Arguments = nil

	err = QueryRow(db, query, &value)
	require.Nil(t, err)
	require.Equal(t, "first", value)

	query.Query = "insert into logs (message) values (?);"
	query.Arguments = []any{"second"}

	id, err = ExecuteInsert(db, query)
	require.Nil(t, err)
	require.Equal(t, int64(2), id)

	query.Query = "select message from logs order by id;"
	query.Arguments = nil

	err = QueryRows(db, query, callback)
	require.Nil(t, err)
	require.Equal(t, []string{"first", "second"}, messages)

	query.Query = "delete from logs where id < ?;"
	query.Arguments = []any{2}

	affected, err = ExecuteQuery(db, query)
	require.Nil(t, err)
	require.Equal(t, int64(1), affected)
}

func TestHandleErrorPassthrough(t *testing.T) {
	require.Nil(t, handleError(nil))
	require.ErrorIs(t, handleError(ErrQueryReturnedNoRows), ErrQueryReturnedNoRows)
}
