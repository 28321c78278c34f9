package config

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Duration is a 'time.Duration' which is encoded in JSON as a Go duration string e.g. "24h", for compatibility a
// number of nanoseconds is also accepted.
type Duration time.Duration

// MarshalJSON implements 'json.Marshaler'.
func (d Duration) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements 'json.Unmarshaler'.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var value any

	err := jsoniter.Unmarshal(data, &value)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case float64:
		*d = Duration(v)
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration '%s': %w", v, err)
		}

		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", data)
	}

	return nil
}
