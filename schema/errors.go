package schema

import "fmt"

// SchemaError is returned when a schema, or a field passed to the mapper, is invalid. These errors indicate a
// configuration bug and should be treated as fatal at start up.
type SchemaError struct {
	Field  Field
	Reason string
}

func (s *SchemaError) Error() string {
	if s.Field == "" {
		return fmt.Sprintf("invalid log schema: %s", s.Reason)
	}

	return fmt.Sprintf("invalid log schema: field '%s': %s", s.Field, s.Reason)
}

func newSchemaError(field Field, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
