package sqlite

import "fmt"

// Pragma represents the string representation of an SQLite PRAGMA which can be used to query the SQLite library for
// internal (non-table) data.
type Pragma string

const (
	// PragmaUserVersion is an integer that is available to applications to use however they want; SQLite makes no use
	// of the user_version itself.
	PragmaUserVersion Pragma = "user_version"

	// PragmaJournalMode is the journal mode of the database e.g. 'wal' which allows readers to proceed whilst a log
	// entry is being written.
	PragmaJournalMode Pragma = "journal_mode"
)

// GetPragma queries the provided pragma and stores the result in the provided interface; its the job of the caller to
// ensure the provided type is valid for the value returned by the pragma.
func GetPragma(db Queryable, pragma Pragma, data any) error {
	query := Query{
		Query: fmt.Sprintf("pragma %s;", pragma),
	}

	return QueryRow(db, query, data)
}

// SetPragma sets the provided pragma to the given value; its the job of the caller to ensure the provided value is of a
// valid type for the pragma.
//
// NOTE: Some pragmas (e.g. 'journal_mode') return a row when set, this is why 'Query' is used rather than 'Exec'.
func SetPragma(db Queryable, pragma Pragma, value any) error {
	query := Query{
		Query: fmt.Sprintf("pragma %s=%v;", pragma, value),
	}

	rows, err := db.Query(query.Query)
	if err != nil {
		return handleError(err)
	}
	defer rows.Close()

	for rows.Next() {
	}

	return rows.Err()
}
