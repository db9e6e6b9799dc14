package logger

// Logger is the minimal structured logging interface used by the engine.
// Implementations accept alternating key/value pairs; a trailing key without a
// value is dropped.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// TraceIDFunc generates a correlation ID attached to log output. It must be
// cheap and safe for concurrent calls.
type TraceIDFunc func() string
