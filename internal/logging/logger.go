// Package logging provides a unified logging interface for the transform
// buffer. It abstracts the underlying implementation so the buffer can log
// structurally (it logs each ingested transform) without binding callers
// to a specific backend.
package logging

import (
	"io"
	stdlog "log"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used across the buffer's internals.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Debug logs a debug message. The buffer uses this for one event per
	// SetTransform call, which would be too noisy at Info level.
	Debug(msg string, fields ...Field)

	// Error logs an error message with the associated error.
	Error(msg string, err error, fields ...Field)
}

// Field is a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Uint32 creates a uint32 field, the natural type for a FrameID.
func Uint32(key string, value uint32) Field { return Field{Key: key, Value: value} }

// Uint64 creates a uint64 field, the natural type for a timestamp.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Int creates an integer field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// nopLogger discards everything. Used as the zero value for components
// constructed without an explicit logger, so the buffer never nil-checks a
// logger before every log call.
type nopLogger struct{}

func (nopLogger) Info(string, ...Field)         {}
func (nopLogger) Debug(string, ...Field)        {}
func (nopLogger) Error(string, error, ...Field) {}

// Nop returns a Logger that discards all log calls.
func Nop() Logger { return nopLogger{} }

// ZerologAdapter adapts a zerolog.Logger to the Logger interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new Logger backed by zerolog.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewDefaultLogger creates a Logger writing to stderr with sensible
// defaults.
func NewDefaultLogger() *ZerologAdapter {
	return NewZerologAdapter(zerolog.New(os.Stderr).With().Timestamp().Logger())
}

// NewLogger creates a Logger writing to w, tagged with a "component" field.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(w).With().Str("component", component).Timestamp().Logger(),
	)
}

func (z *ZerologAdapter) applyFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case uint32:
			event = event.Uint32(f.Key, v)
		case uint64:
			event = event.Uint64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	return event
}

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	z.applyFields(z.logger.Info(), fields).Msg(msg)
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	z.applyFields(z.logger.Debug(), fields).Msg(msg)
}

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	z.applyFields(z.logger.Error().Err(err), fields).Msg(msg)
}

// StdLoggerAdapter adapts a standard log.Logger to the Logger interface,
// for callers that do not want a zerolog dependency pulled into their own
// binary (e.g. a simple test harness).
type StdLoggerAdapter struct {
	logger *stdlog.Logger
}

// NewStdLoggerAdapter creates a new Logger backed by a standard
// log.Logger.
func NewStdLoggerAdapter(logger *stdlog.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{logger: logger}
}

func (s *StdLoggerAdapter) Info(msg string, fields ...Field) {
	if len(fields) == 0 {
		s.logger.Println("[INFO]", msg)
		return
	}
	s.logger.Printf("[INFO] %s %v\n", msg, fields)
}

func (s *StdLoggerAdapter) Debug(msg string, fields ...Field) {
	if len(fields) == 0 {
		s.logger.Println("[DEBUG]", msg)
		return
	}
	s.logger.Printf("[DEBUG] %s %v\n", msg, fields)
}

func (s *StdLoggerAdapter) Error(msg string, err error, fields ...Field) {
	if len(fields) == 0 {
		s.logger.Printf("[ERROR] %s: %v\n", msg, err)
		return
	}
	s.logger.Printf("[ERROR] %s: %v %v\n", msg, err, fields)
}
