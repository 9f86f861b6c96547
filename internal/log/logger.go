// Package log wraps slog with a component-tagged logger so every line can be
// traced back to the engine or adapter that emitted it.
package log

import (
	"log/slog"
	"os"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentAnalysis = "analysis"
	ComponentReports  = "reports"
	ComponentStorage  = "storage"
	ComponentWorker   = "worker"
)

// Common field names for structured logging.
const (
	FieldUserID     = "user_id"
	FieldReport     = "report"
	FieldAlertLevel = "alert_level"
	FieldAlertTitle = "alert_title"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
)

// Logger tags every record with a component attribute.
type Logger struct {
	*slog.Logger
	component string
}

// New builds a text-handler logger at the given level for a component.
func New(level slog.Level, component string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), component: component}
}

// NewWithLogger wraps an existing slog.Logger, mainly for tests.
func NewWithLogger(logger *slog.Logger, component string) *Logger {
	return &Logger{Logger: logger, component: component}
}

// WithComponent returns a logger tagged with a different component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

// With returns a logger with extra attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, l.tagged(args)...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, l.tagged(args)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, l.tagged(args)...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, l.tagged(args)...)
}

// Component returns the component tag.
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) tagged(args []any) []any {
	return append([]any{"component", l.component}, args...)
}
