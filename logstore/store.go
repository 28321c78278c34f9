// Package logstore implements the log store which writes, reads and clears leveled log entries through a storage
// backend, and the registry of source scoped stores.
package logstore

import (
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/schema"
	"github.com/couchbase/tools-logstore/table"
	"github.com/couchbase/tools-logstore/types/timeprovider"
)

// StoreOptions encapsulates the options available when creating a 'Store'.
type StoreOptions struct {
	// Extra are merged into every entry written by the store, they also define its scope. Keys must be non-core fields
	// of the schema.
	Extra Fields

	// TimeProvider stamps entries, defaults to the current time.
	TimeProvider timeprovider.TimeProvider

	// Logger is the host's operational logger, write failures are reported to it.
	Logger log.Logger

	// FailureInterval is the minimum interval between write failures being reported, defaults to
	// 'DefaultFailureInterval'.
	FailureInterval time.Duration
}

// Store writes, reads and clears log entries. A store with extra fields is scoped, it only reads/clears the entries
// tagged with those values.
//
// NOTE: Stores hold no locks, concurrent writes are serialized by the backend.
type Store struct {
	table    table.Table
	mapper   *schema.Mapper
	extra    Fields
	scope    map[string]any
	clock    timeprovider.TimeProvider
	logger   log.WrappedLogger
	fallback *fallback
}

// NewStore returns a store writing to the given table through the given mapper.
func NewStore(tbl table.Table, mapper *schema.Mapper, options StoreOptions) (*Store, error) {
	if tbl == nil {
		return nil, table.ErrStorageUnavailable
	}

	if mapper == nil {
		return nil, &schema.SchemaError{Reason: "no schema mapper provided"}
	}

	if options.TimeProvider == nil {
		options.TimeProvider = timeprovider.CurrentTimeProvider{}
	}

	store := &Store{
		table:    tbl,
		mapper:   mapper,
		clock:    options.TimeProvider,
		logger:   log.NewWrappedLogger(options.Logger),
		fallback: newFallback(options.Logger, options.FailureInterval),
	}

	return store.derive(options.Extra)
}

// With returns a store sharing this store's table, mapper, clock and fallback whose extra fields are this store's
// merged with the given fields; the given fields win on collision.
func (s *Store) With(extra Fields) (*Store, error) {
	merged := s.extra.clone()
	for field, value := range extra {
		merged[field] = value
	}

	derived := *s
	derived.extra = nil
	derived.scope = nil

	return (&derived).derive(merged)
}

// derive validates and binds the given extra fields to the store.
func (s *Store) derive(extra Fields) (*Store, error) {
	s.extra = make(Fields, len(extra))
	s.scope = make(map[string]any, len(extra))

	allowed := s.mapper.ExtraFields()

	for field, value := range extra {
		if schema.IsCore(field) {
			return nil, &schema.SchemaError{Field: field, Reason: "core fields may not be used as extra fields"}
		}

		if !slices.Contains(allowed, field) {
			return nil, &schema.SchemaError{Field: field, Reason: "not an extra field of the log table"}
		}

		column, err := s.mapper.Column(field)
		if err != nil {
			return nil, err
		}

		s.extra[field] = value
		s.scope[column] = value
	}

	return s, nil
}

// Extra returns a copy of the extra fields bound to this store.
func (s *Store) Extra() Fields {
	return s.extra.clone()
}

// Scoped returns a boolean indicating whether this store only observes a subset of the table.
func (s *Store) Scoped() bool {
	return len(s.scope) != 0
}

// Log writes a new entry, returning it with its backend assigned identifier.
//
// NOTE: Logging is best-effort, failures are returned for the caller to discard and are reported to the host's logger.
func (s *Store) Log(level log.Level, message string, extra Fields) (Entry, error) {
	entry, err := s.log(level, message, extra)
	if err != nil {
		s.fallback.report(err)
	}

	return entry, err
}

func (s *Store) log(level log.Level, message string, extra Fields) (Entry, error) {
	if !level.Valid() {
		return Entry{}, fmt.Errorf("invalid log level %d", uint8(level))
	}

	values := s.extra.clone()
	for field, value := range extra {
		values[field] = value
	}

	values[schema.FieldDate] = s.clock.Now().UTC()
	values[schema.FieldLevel] = level.String()
	values[schema.FieldMessage] = message

	delete(values, schema.FieldID)

	row, err := s.mapper.ToRow(values)
	if err != nil {
		return Entry{}, err
	}

	id, err := s.table.Insert(row)
	if err != nil {
		return Entry{}, err
	}

	values[schema.FieldID] = id

	return entryFromFields(values)
}

// ReadAll returns the entries in this store's scope, oldest first.
func (s *Store) ReadAll() ([]Entry, error) {
	rows, err := s.table.Select(table.Where{Equals: s.scope})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))

	for _, row := range rows {
		values, err := s.mapper.FromRow(row)
		if err != nil {
			return nil, err
		}

		entry, err := entryFromFields(values)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Clear removes the entries in this store's scope, returning how many were removed. Clearing an unscoped store
// removes every entry in the table.
func (s *Store) Clear() (int64, error) {
	cleared, err := s.table.DeleteWhere(table.Where{Equals: s.scope})
	if err != nil {
		return 0, err
	}

	s.logger.Debugf("(Log Store) Cleared %d entries from scope %v", cleared, log.UserDataValue(fmt.Sprint(s.scope)))

	return cleared, nil
}

// Logger returns an adapter which allows the store to be used as a 'log.Logger', errors are absorbed.
func (s *Store) Logger() log.Logger {
	return storeLogger{store: s}
}

// storeLogger adapts a 'Store' into a 'log.Logger'.
type storeLogger struct {
	store *Store
}

func (l storeLogger) Log(level log.Level, format string, args ...any) {
	_, _ = l.store.Log(level, fmt.Sprintf(format, args...), nil)
}
