package table

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/retry"
	"github.com/couchbase/tools-logstore/schema"
	"github.com/couchbase/tools-logstore/sqlite"
	"github.com/couchbase/tools-logstore/types/timeprovider"
)

// SQLiteTableOptions encapsulates the options available when creating an 'SQLiteTable'.
type SQLiteTableOptions struct {
	// TimeProvider is used to compute age cutoffs, defaults to the current time.
	TimeProvider timeprovider.TimeProvider

	// Logger is the host's operational logger, used to report retries.
	Logger log.Logger

	// JournalMode, when set, is applied to the database e.g. "wal".
	JournalMode string

	// Attempts is the number of times a write is attempted whilst the database is locked by another connection/process.
	Attempts int
}

// SQLiteTable is a persisted table stored in an SQLite database.
type SQLiteTable struct {
	db      *sql.DB
	schema  schema.Schema
	known   columnSet
	columns []string
	pk      string
	date    string
	clock   timeprovider.TimeProvider
	retries retry.Options
	logger  log.WrappedLogger
}

var _ Table = (*SQLiteTable)(nil)

// NewSQLiteTable returns a table stored in the given database, creating it if it doesn't already exist; this is
// idempotent and safe to call every time the host starts.
func NewSQLiteTable(db *sql.DB, s schema.Schema, options SQLiteTableOptions) (*SQLiteTable, error) {
	if db == nil {
		return nil, ErrStorageUnavailable
	}

	err := s.Validate()
	if err != nil {
		return nil, err
	}

	if options.TimeProvider == nil {
		options.TimeProvider = timeprovider.CurrentTimeProvider{}
	}

	table := &SQLiteTable{
		db:     db,
		schema: s,
		known:  make(columnSet, len(s.Columns)),
		clock:  options.TimeProvider,
		logger: log.NewWrappedLogger(options.Logger),
	}

	for _, column := range s.Columns {
		table.known[column.Name] = struct{}{}
		table.columns = append(table.columns, column.Name)
	}

	pk, _ := s.Column(s.PrimaryKey)
	table.pk = pk.Name

	date, _ := s.Column(schema.FieldDate)
	table.date = date.Name

	table.retries = retry.Options{
		Attempts:  options.Attempts,
		Transient: func(err error) bool { return errors.Is(err, sqlite.ErrDBLocked) },
		OnRetry: func(attempt int, delay time.Duration, err error) {
			table.logger.Warnf("(Log Table) Table '%s' is locked after attempt %d, retrying in %s: %v", s.Table,
				attempt, delay, err)
		},
	}

	if options.JournalMode != "" {
		err = sqlite.SetPragma(db, sqlite.PragmaJournalMode, options.JournalMode)
		if err != nil {
			return nil, &StorageError{Op: "configure", Table: s.Table, Err: err}
		}
	}

	_, err = sqlite.ExecuteQuery(db, sqlite.Query{Query: table.createQuery()})
	if err != nil {
		return nil, &StorageError{Op: "create", Table: s.Table, Err: err}
	}

	table.logger.Debugf("(Log Table) Ensured SQLite table '%s' exists", s.Table)

	return table, nil
}

// createQuery returns the DDL used to create the table.
//
// NOTE: SQLite only allows 'autoincrement' on an 'integer primary key' column, it guarantees that identifiers are never
// reused even after rows are deleted.
func (s *SQLiteTable) createQuery() string {
	definitions := make([]string, 0, len(s.schema.Columns))

	for _, column := range s.schema.Columns {
		definition := fmt.Sprintf("%s %s", quote(column.Name), column.Type)
		if column.Name == s.pk {
			definition += " primary key autoincrement"
		}

		definitions = append(definitions, definition)
	}

	return fmt.Sprintf("create table if not exists %s (%s);", quote(s.schema.Table), strings.Join(definitions, ", "))
}

// Insert implements the 'Table' interface.
func (s *SQLiteTable) Insert(row Row) (int64, error) {
	columns := sortedColumns(row)

	err := s.known.check("insert", columns)
	if err != nil {
		return 0, &StorageError{Op: "insert into", Table: s.schema.Table, Err: err}
	}

	query := sqlite.Query{Query: fmt.Sprintf("insert into %s default values;", quote(s.schema.Table))}

	if len(columns) != 0 {
		quoted := make([]string, 0, len(columns))
		for _, column := range columns {
			quoted = append(quoted, quote(column))
			query.Arguments = append(query.Arguments, normalize(row[column]))
		}

		query.Query = fmt.Sprintf("insert into %s (%s) values (%s);", quote(s.schema.Table),
			strings.Join(quoted, ", "), placeholders(len(columns)))
	}

	id, err := retry.Do(s.retries, func(_ int) (int64, error) { return sqlite.ExecuteInsert(s.db, query) })
	if err != nil {
		return 0, &StorageError{Op: "insert into", Table: s.schema.Table, Err: err}
	}

	return id, nil
}

// Select implements the 'Table' interface.
func (s *SQLiteTable) Select(where Where) ([]Row, error) {
	clause, args, err := s.where(where)
	if err != nil {
		return nil, &StorageError{Op: "select from", Table: s.schema.Table, Err: err}
	}

	quoted := make([]string, 0, len(s.columns))
	for _, column := range s.columns {
		quoted = append(quoted, quote(column))
	}

	query := sqlite.Query{
		Query: fmt.Sprintf("select %s from %s%s order by %s asc;", strings.Join(quoted, ", "),
			quote(s.schema.Table), clause, quote(s.pk)),
		Arguments: args,
	}

	rows := make([]Row, 0)

	callback := func(scan sqlite.ScanCallback) error {
		var (
			values = make([]any, len(s.columns))
			dest   = make([]any, len(s.columns))
		)

		for i := range values {
			dest[i] = &values[i]
		}

		err := scan(dest...)
		if err != nil {
			return err
		}

		row := make(Row, len(s.columns))

		for i, column := range s.columns {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}

			row[column] = values[i]
		}

		rows = append(rows, row)

		return nil
	}

	err = sqlite.QueryRows(s.db, query, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, &StorageError{Op: "select from", Table: s.schema.Table, Err: err}
	}

	return rows, nil
}

// DeleteWhere implements the 'Table' interface.
func (s *SQLiteTable) DeleteWhere(where Where) (int64, error) {
	clause, args, err := s.where(where)
	if err != nil {
		return 0, &StorageError{Op: "delete from", Table: s.schema.Table, Err: err}
	}

	query := sqlite.Query{
		Query:     fmt.Sprintf("delete from %s%s;", quote(s.schema.Table), clause),
		Arguments: args,
	}

	deleted, err := retry.Do(s.retries, func(_ int) (int64, error) { return sqlite.ExecuteQuery(s.db, query) })
	if err != nil {
		return 0, &StorageError{Op: "delete from", Table: s.schema.Table, Err: err}
	}

	return deleted, nil
}

// Exists implements the 'Table' interface.
func (s *SQLiteTable) Exists() bool {
	var count int

	err := sqlite.QueryRow(s.db, sqlite.Query{
		Query:     "select count(*) from sqlite_master where type = 'table' and name = ?;",
		Arguments: []any{s.schema.Table},
	}, &count)

	return err == nil && count == 1
}

// where returns the 'where' clause (with a leading space) and arguments for the given filter.
func (s *SQLiteTable) where(where Where) (string, []any, error) {
	if where.IsZero() {
		return "", nil, nil
	}

	var (
		conditions = make([]string, 0, len(where.Equals)+1)
		args       = make([]any, 0, len(where.Equals)+1)
		columns    = where.equalsColumns()
	)

	err := s.known.check("filter", columns)
	if err != nil {
		return "", nil, err
	}

	for _, column := range columns {
		conditions = append(conditions, fmt.Sprintf("%s = ?", quote(column)))
		args = append(args, normalize(where.Equals[column]))
	}

	// Dates are compared as instants, rows defaulted through 'current_timestamp' are stored without fractional seconds
	// or a zone and would otherwise sort before an equal cutoff.
	if where.OlderThan > 0 {
		conditions = append(conditions, fmt.Sprintf("julianday(%s) < julianday(?)", quote(s.date)))
		args = append(args, s.clock.Now().Add(-where.OlderThan).UTC())
	}

	return " where " + strings.Join(conditions, " and "), args, nil
}

// quote returns the given identifier quoted for use in a query, identifiers are validated by the schema.
func quote(identifier string) string {
	return `"` + identifier + `"`
}

// placeholders returns 'n' comma separated bind parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
