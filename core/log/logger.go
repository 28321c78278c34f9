// Package log provides the logging interface used throughout 'tools-logstore'. Applications supply their own
// implementation (or use 'NewSlogLogger'), this is the host's operational channel and is distinct from the log entries
// persisted by the 'logstore' package.
package log

// Logger interface which allows applications to provide custom logger implementations.
type Logger interface {
	Log(level Level, format string, args ...any)
}
