// Package table provides the storage backends log entries are persisted through. Every backend implements 'Table', the
// composition root picks exactly one per process and shares it between every log store and the retention job.
package table

//go:generate mockery --all --case underscore --inpackage

import (
	"fmt"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Row is a single physical row, keyed by column name.
type Row map[string]any

// Where restricts the rows a 'Select' or 'DeleteWhere' operates on, the zero value matches every row.
type Where struct {
	// OlderThan, when non-zero, matches rows whose date column is strictly before 'now - OlderThan'.
	OlderThan time.Duration

	// Equals matches rows whose columns equal the given values.
	Equals map[string]any
}

// IsZero returns a boolean indicating whether the where clause matches every row.
func (w Where) IsZero() bool {
	return w.OlderThan <= 0 && len(w.Equals) == 0
}

// equalsColumns returns the columns constrained by 'Equals' in a stable order.
func (w Where) equalsColumns() []string {
	columns := maps.Keys(w.Equals)
	slices.Sort(columns)

	return columns
}

// Table is the storage backend capability set.
type Table interface {
	// Insert appends the given row, returning the identifier assigned to it. Identifiers are strictly increasing.
	Insert(row Row) (int64, error)

	// Select returns the matching rows ordered by primary key ascending.
	Select(where Where) ([]Row, error)

	// DeleteWhere removes the matching rows, returning how many were removed; matching nothing is not an error.
	DeleteWhere(where Where) (int64, error)

	// Exists returns a boolean indicating whether the backend is durably storing rows.
	Exists() bool
}

// columnSet is used to reject rows/filters referencing columns which aren't part of the schema.
type columnSet map[string]struct{}

func (c columnSet) check(op string, columns []string) error {
	for _, column := range columns {
		if _, ok := c[column]; !ok {
			return fmt.Errorf("%s references unknown column '%s'", op, column)
		}
	}

	return nil
}

// sortedColumns returns the columns of the given row in a stable order.
func sortedColumns(row Row) []string {
	columns := maps.Keys(row)
	slices.Sort(columns)

	return columns
}

// normalize converts values into the representation stored by every backend.
func normalize(value any) any {
	if t, ok := value.(time.Time); ok {
		return t.UTC()
	}

	return value
}
