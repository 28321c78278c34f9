// Package schema describes the physical layout of a log table and translates between the semantic fields of a log
// entry and the physical columns they are stored in.
package schema

import (
	"regexp"

	"github.com/couchbase/tools-logstore/errdefs"
)

// Field is the semantic name of a value stored in a log entry.
type Field string

const (
	// FieldID is the backend assigned, sequential identifier of an entry.
	FieldID Field = "id"

	// FieldDate is the time at which the entry was written.
	FieldDate Field = "date"

	// FieldLevel is the severity of the entry.
	FieldLevel Field = "level"

	// FieldMessage is the free-form text of the entry.
	FieldMessage Field = "message"

	// FieldSourceID tags an entry with the subsystem/feed which wrote it, an empty value means "unscoped".
	FieldSourceID Field = "source_id"
)

// CoreFields are the fields which every schema must map, everything else is an extra field.
var CoreFields = []Field{FieldID, FieldDate, FieldLevel, FieldMessage}

// IsCore returns a boolean indicating whether the given field is one of the 'CoreFields'.
func IsCore(field Field) bool {
	for _, core := range CoreFields {
		if field == core {
			return true
		}
	}

	return false
}

// identifier is the set of table/column names accepted, names are interpolated into DDL/DML so we're strict.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Column maps a semantic field to a physical column and its declared storage type.
type Column struct {
	Field Field
	Name  string
	Type  string
}

// Schema is the physical layout of a log table.
//
// NOTE: The primary key column is expected to be an auto-incrementing integer, it's never supplied on insert.
type Schema struct {
	Table      string
	Columns    []Column
	PrimaryKey Field
}

// Default returns the layout used for log tables unless the host supplies its own.
func Default(table string) Schema {
	return Schema{
		Table: table,
		Columns: []Column{
			{Field: FieldID, Name: "id", Type: "integer not null"},
			{Field: FieldDate, Name: "date", Type: "timestamp not null default current_timestamp"},
			{Field: FieldLevel, Name: "level", Type: "varchar(30) not null"},
			{Field: FieldMessage, Name: "message", Type: "text not null"},
			{Field: FieldSourceID, Name: "source_id", Type: "varchar(100) not null default ''"},
		},
		PrimaryKey: FieldID,
	}
}

// Column returns the column which stores the given field.
func (s Schema) Column(field Field) (Column, bool) {
	for _, column := range s.Columns {
		if column.Field == field {
			return column, true
		}
	}

	return Column{}, false
}

// Has returns a boolean indicating whether the schema maps the given field.
func (s Schema) Has(field Field) bool {
	_, ok := s.Column(field)
	return ok
}

// Validate checks the schema, returning every problem found (as '*SchemaError' values aggregated in a MultiError)
// rather than just the first.
func (s Schema) Validate() error {
	errs := &errdefs.MultiError{Separator: "; "}

	if !identifier.MatchString(s.Table) {
		errs.Add(newSchemaError("", "invalid table name '%s'", s.Table))
	}

	if len(s.Columns) == 0 {
		errs.Add(newSchemaError("", "no columns declared"))
	}

	var (
		fields = make(map[Field]struct{}, len(s.Columns))
		names  = make(map[string]struct{}, len(s.Columns))
	)

	for _, column := range s.Columns {
		if column.Field == "" {
			errs.Add(newSchemaError("", "column '%s' is not mapped to a field", column.Name))
		}

		if _, ok := fields[column.Field]; ok && column.Field != "" {
			errs.Add(newSchemaError(column.Field, "mapped more than once"))
		}

		fields[column.Field] = struct{}{}

		if !identifier.MatchString(column.Name) {
			errs.Add(newSchemaError(column.Field, "invalid column name '%s'", column.Name))
		}

		if _, ok := names[column.Name]; ok {
			errs.Add(newSchemaError(column.Field, "column '%s' declared more than once", column.Name))
		}

		names[column.Name] = struct{}{}

		if column.Type == "" {
			errs.Add(newSchemaError(column.Field, "column '%s' has no type", column.Name))
		}
	}

	for _, core := range CoreFields {
		if _, ok := fields[core]; !ok {
			errs.Add(newSchemaError(core, "required field is not mapped"))
		}
	}

	switch {
	case s.PrimaryKey == "":
		errs.Add(newSchemaError("", "no primary key declared"))
	case s.PrimaryKey != FieldID:
		errs.Add(newSchemaError(s.PrimaryKey, "primary key must be the '%s' field", FieldID))
	}

	return errs.ErrOrNil()
}
