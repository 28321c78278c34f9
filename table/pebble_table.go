package table

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	jsoniter "github.com/json-iterator/go"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/schema"
	"github.com/couchbase/tools-logstore/types/timeprovider"
)

// rowCodec encodes rows stored in pebble; numbers are decoded as 'json.Number' so integers survive the round trip.
var rowCodec = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// PebbleTableOptions encapsulates the options available when opening a 'PebbleTable'.
type PebbleTableOptions struct {
	// TimeProvider is used to compute age cutoffs, defaults to the current time.
	TimeProvider timeprovider.TimeProvider

	// Logger is the host's operational logger.
	Logger log.Logger

	// Sync forces a WAL sync for every write.
	Sync bool

	// PebbleOptions allows tuning pebble, defaults are used when <nil>.
	PebbleOptions *pebble.Options
}

// PebbleTable is a persisted table stored in a pebble key/value store. Rows are keyed by '<table>/' followed by the
// big-endian identifier, so iteration order is identifier order. The last assigned identifier is kept under
// '<table>#seq', which sorts outside the row range and survives every row being deleted.
type PebbleTable struct {
	db        *pebble.DB
	schema    schema.Schema
	known     columnSet
	pk        string
	date      string
	prefix    []byte
	upper     []byte
	seq       []byte
	writeOpts *pebble.WriteOptions
	clock     timeprovider.TimeProvider
	logger    log.WrappedLogger

	// lock serializes identifier assignment.
	lock sync.Mutex
	last uint64
}

var _ Table = (*PebbleTable)(nil)

// OpenPebbleTable opens (creating if required) a pebble store in the given directory.
func OpenPebbleTable(dir string, s schema.Schema, options PebbleTableOptions) (*PebbleTable, error) {
	if dir == "" {
		return nil, ErrStorageUnavailable
	}

	err := s.Validate()
	if err != nil {
		return nil, err
	}

	if options.TimeProvider == nil {
		options.TimeProvider = timeprovider.CurrentTimeProvider{}
	}

	pebbleOptions := options.PebbleOptions
	if pebbleOptions == nil {
		pebbleOptions = &pebble.Options{}
	}

	db, err := pebble.Open(dir, pebbleOptions)
	if err != nil {
		return nil, &StorageError{Op: "open", Table: s.Table, Err: err}
	}

	table := &PebbleTable{
		db:        db,
		schema:    s,
		known:     make(columnSet, len(s.Columns)),
		prefix:    []byte(s.Table + "/"),
		upper:     []byte(s.Table + "0"),
		seq:       []byte(s.Table + "#seq"),
		writeOpts: pebble.NoSync,
		clock:     options.TimeProvider,
		logger:    log.NewWrappedLogger(options.Logger),
	}

	if options.Sync {
		table.writeOpts = pebble.Sync
	}

	for _, column := range s.Columns {
		table.known[column.Name] = struct{}{}
	}

	pk, _ := s.Column(s.PrimaryKey)
	table.pk = pk.Name

	date, _ := s.Column(schema.FieldDate)
	table.date = date.Name

	table.last, err = table.lastID()
	if err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Table: s.Table, Err: err}
	}

	table.logger.Debugf("(Log Table) Opened pebble table '%s' at identifier %d", s.Table, table.last)

	return table, nil
}

// lastID returns the largest identifier ever assigned, identifiers continue from this value.
func (p *PebbleTable) lastID() (uint64, error) {
	seq, err := p.storedSeq()
	if err != nil {
		return 0, err
	}

	iter, err := p.newIter()
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return seq, iter.Error()
	}

	id, err := p.decodeKey(iter.Key())
	if err != nil {
		return 0, err
	}

	return max(seq, id), nil
}

// storedSeq returns the persisted high-water mark, zero for stores which have never assigned an identifier.
func (p *PebbleTable) storedSeq() (uint64, error) {
	value, closer, err := p.db.Get(p.seq)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}
	defer closer.Close()

	if len(value) != 8 {
		return 0, fmt.Errorf("malformed sequence of length %d", len(value))
	}

	return binary.BigEndian.Uint64(value), nil
}

func (p *PebbleTable) newIter() (*pebble.Iterator, error) {
	return p.db.NewIter(&pebble.IterOptions{LowerBound: p.prefix, UpperBound: p.upper})
}

func (p *PebbleTable) key(id uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), p.prefix...), id)
}

func (p *PebbleTable) decodeKey(key []byte) (uint64, error) {
	if len(key) != len(p.prefix)+8 {
		return 0, fmt.Errorf("malformed key of length %d", len(key))
	}

	return binary.BigEndian.Uint64(key[len(p.prefix):]), nil
}

// Insert implements the 'Table' interface.
func (p *PebbleTable) Insert(row Row) (int64, error) {
	columns := sortedColumns(row)

	err := p.known.check("insert", columns)
	if err != nil {
		return 0, &StorageError{Op: "insert into", Table: p.schema.Table, Err: err}
	}

	stored := make(Row, len(row)+1)

	for _, column := range columns {
		if column == p.pk {
			continue
		}

		stored[column] = normalize(row[column])
	}

	if _, ok := stored[p.date]; !ok {
		stored[p.date] = p.clock.Now().UTC()
	}

	value, err := rowCodec.Marshal(stored)
	if err != nil {
		return 0, &StorageError{Op: "insert into", Table: p.schema.Table, Err: err}
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	id := p.last + 1

	batch := p.db.NewBatch()
	defer batch.Close()

	_ = batch.Set(p.key(id), value, nil)
	_ = batch.Set(p.seq, binary.BigEndian.AppendUint64(nil, id), nil)

	err = batch.Commit(p.writeOpts)
	if err != nil {
		return 0, &StorageError{Op: "insert into", Table: p.schema.Table, Err: err}
	}

	p.last = id

	return int64(id), nil
}

// Select implements the 'Table' interface.
func (p *PebbleTable) Select(where Where) ([]Row, error) {
	rows := make([]Row, 0)

	err := p.scan(where, func(_ []byte, row Row) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "select from", Table: p.schema.Table, Err: err}
	}

	return rows, nil
}

// DeleteWhere implements the 'Table' interface, all matching rows are removed in a single batch.
func (p *PebbleTable) DeleteWhere(where Where) (int64, error) {
	batch := p.db.NewBatch()
	defer batch.Close()

	var deleted int64

	err := p.scan(where, func(key []byte, _ Row) error {
		deleted++
		return batch.Delete(key, nil)
	})
	if err != nil {
		return 0, &StorageError{Op: "delete from", Table: p.schema.Table, Err: err}
	}

	if deleted == 0 {
		return 0, nil
	}

	err = batch.Commit(p.writeOpts)
	if err != nil {
		return 0, &StorageError{Op: "delete from", Table: p.schema.Table, Err: err}
	}

	return deleted, nil
}

// Exists implements the 'Table' interface.
func (p *PebbleTable) Exists() bool {
	return p.db != nil
}

// Close closes the underlying pebble store.
func (p *PebbleTable) Close() error {
	return p.db.Close()
}

// scan runs the given callback for every row matching the filter, in identifier order.
func (p *PebbleTable) scan(where Where, fn func(key []byte, row Row) error) error {
	columns := where.equalsColumns()

	err := p.known.check("filter", columns)
	if err != nil {
		return err
	}

	var cutoff time.Time
	if where.OlderThan > 0 {
		cutoff = p.clock.Now().Add(-where.OlderThan)
	}

	iter, err := p.newIter()
	if err != nil {
		return err
	}
	defer iter.Close()

	for valid := iter.First(); valid; valid = iter.Next() {
		row, err := p.decode(iter.Key(), iter.Value())
		if err != nil {
			return err
		}

		if !p.matches(row, columns, where, cutoff) {
			continue
		}

		err = fn(iter.Key(), row)
		if err != nil {
			return err
		}
	}

	return iter.Error()
}

func (p *PebbleTable) decode(key, value []byte) (Row, error) {
	id, err := p.decodeKey(key)
	if err != nil {
		return nil, err
	}

	row := make(Row)

	err = rowCodec.Unmarshal(value, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to decode row %d: %w", id, err)
	}

	row[p.pk] = int64(id)

	if raw, ok := row[p.date].(string); ok {
		date, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode date of row %d: %w", id, err)
		}

		row[p.date] = date
	}

	return row, nil
}

func (p *PebbleTable) matches(row Row, columns []string, where Where, cutoff time.Time) bool {
	if where.OlderThan > 0 {
		date, ok := row[p.date].(time.Time)
		if !ok || !date.Before(cutoff) {
			return false
		}
	}

	for _, column := range columns {
		if fmt.Sprint(row[column]) != fmt.Sprint(where.Equals[column]) {
			return false
		}
	}

	return true
}
