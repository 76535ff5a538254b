package logger

// Logger exposes the logging methods the planner and its adapters rely on.
// Implementations live under infra to keep core packages free of logging
// dependencies.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
