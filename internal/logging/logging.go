// Package logging provides the structured logger used across the feeder.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the leveled, field-map call surface the
// services use. Safe for concurrent use.
type Logger struct {
	zl zerolog.Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn, error. Empty means info.
	Level string
	// Format is "console" (default) or "json".
	Format string
	// Output overrides the destination (stderr by default). Used by tests.
	Output io.Writer
}

// New creates a logger from configuration.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger with a constant component field.
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// Debug logs at debug level with optional fields.
func (l *Logger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

// Info logs at info level with optional fields.
func (l *Logger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

// Warn logs at warn level with optional fields.
func (l *Logger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

// Error logs at error level with optional fields.
func (l *Logger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func emit(ev *zerolog.Event, msg string, fields map[string]interface{}) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
