package table

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/couchbase/tools-logstore/schema"
	"github.com/couchbase/tools-logstore/sqlite"
	"github.com/couchbase/tools-logstore/types/timeprovider"
)

func TestNewSQLiteTableNoDatabase(t *testing.T) {
	_, err := NewSQLiteTable(nil, schema.Default("logs"), SQLiteTableOptions{})
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestNewSQLiteTableInvalidSchema(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)

	defer db.Close()

	_, err = NewSQLiteTable(db, schema.Default("invalid table"), SQLiteTableOptions{})

	var schemaErr *schema.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestNewSQLiteTableIdempotent(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)

	defer db.Close()

	first, err := NewSQLiteTable(db, schema.Default("logs"), SQLiteTableOptions{JournalMode: "wal"})
	require.NoError(t, err)

	_, err = first.Insert(Row{"level": "info", "message": "kept"})
	require.NoError(t, err)

	second, err := NewSQLiteTable(db, schema.Default("logs"), SQLiteTableOptions{JournalMode: "wal"})
	require.NoError(t, err)
	require.True(t, second.Exists())

	rows, err := second.Select(Where{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "kept", rows[0]["message"])
	require.Equal(t, "", rows[0]["source_id"])
}

func TestSQLiteTableDeleteOlderThanDefaultedDates(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)

	defer db.Close()

	table, err := NewSQLiteTable(db, schema.Default("logs"), SQLiteTableOptions{
		TimeProvider: timeprovider.NewFakeTimeProvider(testNow),
	})
	require.NoError(t, err)

	// Rows written by the host through the column default use the 'current_timestamp' layout
	for _, days := range []int{101, 100} {
		_, err = sqlite.ExecuteQuery(db, sqlite.Query{
			Query: `insert into "logs" ("date", "level", "message") values (?, 'info', ?);`,
			Arguments: []any{
				testNow.AddDate(0, 0, -days).Format(time.DateTime),
				testNow.AddDate(0, 0, -days).Format(time.DateOnly),
			},
		})
		require.NoError(t, err)
	}

	deleted, err := table.DeleteWhere(Where{OlderThan: 100 * 24 * time.Hour})
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	rows, err := table.Select(Where{})
	require.NoError(t, err)
	require.Equal(t, []string{testNow.AddDate(0, 0, -100).Format(time.DateOnly)}, messages(t, rows))
}

func TestSQLiteTableCreateQuery(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)

	defer db.Close()

	table, err := NewSQLiteTable(db, schema.Default("logs"), SQLiteTableOptions{})
	require.NoError(t, err)

	expected := `create table if not exists "logs" (` +
		`"id" integer not null primary key autoincrement, ` +
		`"date" timestamp not null default current_timestamp, ` +
		`"level" varchar(30) not null, ` +
		`"message" text not null, ` +
		`"source_id" varchar(100) not null default ''` +
		`);`

	require.Equal(t, expected, table.createQuery())
}

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "", placeholders(0))
	require.Equal(t, "?", placeholders(1))
	require.Equal(t, "?, ?, ?", placeholders(3))
}
