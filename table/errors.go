package table

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable is returned when constructing a persisted table without the durable store it depends on; the
// composition root reacts by substituting a 'NullTable'.
var ErrStorageUnavailable = errors.New("durable log storage is unavailable")

// StorageError is returned when a backend operation fails at runtime e.g. the connection was lost, or a constraint was
// violated.
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (s *StorageError) Error() string {
	return fmt.Sprintf("failed to %s log table '%s': %v", s.Op, s.Table, s.Err)
}

func (s *StorageError) Unwrap() error {
	return s.Err
}
