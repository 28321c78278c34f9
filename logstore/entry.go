package logstore

import (
	"fmt"
	"time"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/schema"
)

// Fields are values, keyed by schema field, merged into the entries written by a store.
type Fields map[schema.Field]any

// clone returns a copy of the fields which is safe to mutate.
func (f Fields) clone() Fields {
	cloned := make(Fields, len(f))
	for field, value := range f {
		cloned[field] = value
	}

	return cloned
}

// Entry is a single persisted log entry.
type Entry struct {
	ID       int64     `json:"id"`
	Date     time.Time `json:"date"`
	Level    log.Level `json:"level"`
	Message  string    `json:"message"`
	SourceID string    `json:"source_id,omitempty"`
	Extra    Fields    `json:"extra,omitempty"`
}

// dateLayouts are the layouts accepted when a backend returns the date column as text.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// entryFromFields decodes an entry from a semantic row.
func entryFromFields(values map[schema.Field]any) (Entry, error) {
	var (
		entry Entry
		err   error
	)

	for field, value := range values {
		switch field {
		case schema.FieldID:
			entry.ID, err = toInt64(value)
		case schema.FieldDate:
			entry.Date, err = toTime(value)
		case schema.FieldLevel:
			entry.Level, err = log.ParseLevel(toString(value))
		case schema.FieldMessage:
			entry.Message = toString(value)
		case schema.FieldSourceID:
			entry.SourceID = toString(value)
		default:
			if entry.Extra == nil {
				entry.Extra = make(Fields)
			}

			entry.Extra[field] = value
		}

		if err != nil {
			return Entry{}, fmt.Errorf("failed to decode field '%s': %w", field, err)
		}
	}

	return entry, nil
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case interface{ Int64() (int64, error) }:
		return v.Int64()
	}

	return 0, fmt.Errorf("unexpected identifier type %T", value)
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		for _, layout := range dateLayouts {
			parsed, err := time.Parse(layout, v)
			if err == nil {
				return parsed.UTC(), nil
			}
		}

		return time.Time{}, fmt.Errorf("unexpected date format '%s'", v)
	}

	return time.Time{}, fmt.Errorf("unexpected date type %T", value)
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}

	return fmt.Sprint(value)
}
