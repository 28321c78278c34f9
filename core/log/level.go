package log

import (
	"fmt"
	"strings"
)

// Level is a type alias which is used to indicate the verbosity of an log statement.
type Level uint8

const (
	// LevelTrace is the most verbose log level including finer grained informational events than debug level.
	LevelTrace Level = iota

	// LevelDebug includes fine-grained informational events that are the most useful to debug the library.
	LevelDebug

	// LevelInfo includes informational messages that highlight the progress of events in the library at a
	// course-grained level.
	LevelInfo

	// LevelWarning includes expected but potentially harmful/interesting events.
	LevelWarning

	// LevelError includes error events which may still allow the library to continue running.
	LevelError

	// LevelPanic includes errors events which should lead to a panic. This level will only be used in the most severe
	// of cases.
	LevelPanic
)

// levelNames is the persisted/printed form of each level, indexed by level.
var levelNames = [...]string{
	LevelTrace:   "trace",
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelWarning: "warning",
	LevelError:   "error",
	LevelPanic:   "panic",
}

// String returns the lower-case name of the level, this is the value stored in the 'level' column of a log table.
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", uint8(l))
	}

	return levelNames[l]
}

// Valid returns a boolean indicating whether the level is one of the defined levels.
func (l Level) Valid() bool {
	return int(l) < len(levelNames)
}

// ParseLevel returns the level with the given name, the comparison is case insensitive and accepts the common short
// forms e.g. 'warn'.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error", "err":
		return LevelError, nil
	case "panic":
		return LevelPanic, nil
	}

	return 0, fmt.Errorf("unknown log level '%s'", name)
}

// MarshalText implements 'encoding.TextMarshaler' so levels are encoded by name.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid log level %d", uint8(l))
	}

	return []byte(l.String()), nil
}

// UnmarshalText implements 'encoding.TextUnmarshaler'.
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}
