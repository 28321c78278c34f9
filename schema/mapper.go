package schema

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Mapper translates between semantic rows (keyed by 'Field') and physical rows (keyed by column name). It performs no
// I/O and is safe for concurrent use once constructed.
type Mapper struct {
	schema  Schema
	columns map[Field]string
	fields  map[string]Field
}

// NewMapper validates the given schema and returns a mapper for it.
func NewMapper(schema Schema) (*Mapper, error) {
	err := schema.Validate()
	if err != nil {
		return nil, err
	}

	mapper := &Mapper{
		schema:  schema,
		columns: make(map[Field]string, len(schema.Columns)),
		fields:  make(map[string]Field, len(schema.Columns)),
	}

	for _, column := range schema.Columns {
		mapper.columns[column.Field] = column.Name
		mapper.fields[column.Name] = column.Field
	}

	return mapper, nil
}

// Schema returns the schema this mapper was built from.
func (m *Mapper) Schema() Schema {
	return m.schema
}

// Column returns the physical column name for the given field.
func (m *Mapper) Column(field Field) (string, error) {
	name, ok := m.columns[field]
	if !ok {
		return "", newSchemaError(field, "no column mapping")
	}

	return name, nil
}

// ToRow translates the given semantic row into a physical row.
func (m *Mapper) ToRow(values map[Field]any) (map[string]any, error) {
	row := make(map[string]any, len(values))

	for field, value := range values {
		name, err := m.Column(field)
		if err != nil {
			return nil, err
		}

		row[name] = value
	}

	return row, nil
}

// FromRow translates the given physical row into a semantic row.
func (m *Mapper) FromRow(row map[string]any) (map[Field]any, error) {
	values := make(map[Field]any, len(row))

	for name, value := range row {
		field, ok := m.fields[name]
		if !ok {
			return nil, newSchemaError("", "no field mapped to column '%s'", name)
		}

		values[field] = value
	}

	return values, nil
}

// ExtraFields returns the non-core fields of the schema, sorted.
func (m *Mapper) ExtraFields() []Field {
	extra := make([]Field, 0, len(m.columns))

	for _, field := range maps.Keys(m.columns) {
		if !IsCore(field) {
			extra = append(extra, field)
		}
	}

	slices.Sort(extra)

	return extra
}
