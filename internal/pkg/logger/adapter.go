package logger

import "token_resolver/internal/app/port"

// slogAdapter implements port.Logger on top of the package-level functions,
// so services can take a port.Logger while sharing the global handler.
type slogAdapter struct {
	args []any
}

// NewComponentLogger returns a port.Logger that tags every record with the component name.
func NewComponentLogger(component string) port.Logger {
	return &slogAdapter{args: []any{"component", component}}
}

func (a *slogAdapter) with(args []any) []any {
	if len(a.args) == 0 {
		return args
	}
	out := make([]any, 0, len(a.args)+len(args))
	out = append(out, a.args...)
	return append(out, args...)
}

// Info logs an informational message.
func (a *slogAdapter) Info(msg string, args ...any) {
	Info(msg, a.with(args)...)
}

// Debug logs a debug message.
func (a *slogAdapter) Debug(msg string, args ...any) {
	Debug(msg, a.with(args)...)
}

// Warn logs a warning.
func (a *slogAdapter) Warn(msg string, args ...any) {
	Warn(msg, a.with(args)...)
}

// Error logs an error.
func (a *slogAdapter) Error(msg string, args ...any) {
	Error(msg, a.with(args)...)
}
