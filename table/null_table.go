package table

import "sync/atomic"

// NullTable is a table which discards everything written to it. It's used when no durable store is available so that
// logging degrades to a no-op rather than failing the host application.
type NullTable struct {
	next atomic.Int64
}

var _ Table = (*NullTable)(nil)

// NewNullTable returns a new table which discards all rows.
func NewNullTable() *NullTable {
	return &NullTable{}
}

// Insert discards the row, returning a locally incrementing identifier.
func (n *NullTable) Insert(_ Row) (int64, error) {
	return n.next.Add(1), nil
}

// Select always returns no rows.
func (n *NullTable) Select(_ Where) ([]Row, error) {
	return []Row{}, nil
}

// DeleteWhere always removes zero rows.
func (n *NullTable) DeleteWhere(_ Where) (int64, error) {
	return 0, nil
}

// Exists always returns false, nothing is being persisted.
func (n *NullTable) Exists() bool {
	return false
}
