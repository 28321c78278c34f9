package log

import (
	"context"
	"fmt"
	"log/slog"
)

// UserDataValue is a string that should be treated as user data, and therefore tagged as such in the logs.
type UserDataValue string

func (u UserDataValue) LogValue() slog.Value {
	return slog.StringValue(u.String())
}

// String returns the tagged value, allowing it to be used with the formatted 'Logger' interface.
func (u UserDataValue) String() string {
	return fmt.Sprintf("<ud>%s</ud>", string(u))
}

// UserData returns an Attr for a string value that should be treated as user data.
func UserData(key, value string) slog.Attr {
	return slog.Attr{Key: key, Value: UserDataValue(value).LogValue()}
}

// SlogLogger adapts a 'slog.Logger' so that it may be used wherever a 'Logger' is accepted.
type SlogLogger struct {
	logger *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

// NewSlogLogger returns a 'Logger' which formats messages and forwards them to the given 'slog.Logger', a <nil> logger
// is replaced with 'slog.Default()'.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogLogger{logger: logger}
}

// Log implements the 'Logger' interface.
func (s *SlogLogger) Log(level Level, format string, args ...any) {
	s.logger.Log(context.Background(), SlogLevel(level), fmt.Sprintf(format, args...))
}

// SlogLevel converts the given level into the closest 'slog.Level'.
func SlogLevel(level Level) slog.Level {
	switch level {
	case LevelTrace:
		return slog.LevelDebug - 4
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}

	return slog.LevelError + 4
}
