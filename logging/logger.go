// Package logging provides the logger used across the module. Each package derives its own sub-logger
// from the global one, keyed so that log output stays grep-able by origin.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// GlobalLogger is disabled by default and configured by the process entry point. Each package should
// derive its own sub-logger from it rather than logging through it directly.
var GlobalLogger *Logger

// Logger wraps a pair of zerolog loggers: one for structured output to arbitrary writer channels and
// one for human-readable console output.
type Logger struct {
	// level is the log level shared by both underlying loggers.
	level zerolog.Level

	// structuredLogger emits timestamped JSON to every registered writer.
	structuredLogger zerolog.Logger

	// consoleLogger emits formatted, unstructured output to standard output.
	consoleLogger zerolog.Logger

	// writers holds the channels structuredLogger writes to.
	writers []io.Writer
}

// Fields is a key-value mapping attached to a log event as structured context.
type Fields map[string]any

// NewLogger creates a Logger at the given level. Console output is emitted when enabled; structured
// output goes to the provided writers, if any.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// Both underlying loggers start disabled so an unconfigured Logger is safe to call.
	structuredLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	consoleLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	if len(writers) > 0 {
		structuredLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}
	if consoleEnabled {
		consoleLogger = zerolog.New(consoleWriter(os.Stdout)).Level(level)
	}

	return &Logger{
		level:            level,
		structuredLogger: structuredLogger,
		consoleLogger:    consoleLogger,
		writers:          writers,
	}
}

// NewSubLogger creates a Logger carrying an additional key-value pair in its context. Each package is
// expected to create its own sub-logger this way.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	return &Logger{
		level:            l.level,
		structuredLogger: l.structuredLogger.With().Str(key, value).Logger(),
		consoleLogger:    l.consoleLogger.With().Str(key, value).Logger(),
		writers:          l.writers,
	}
}

// AddWriter registers another channel for structured output. Adding a writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer) {
	for _, existing := range l.writers {
		if existing == writer {
			return
		}
	}
	l.writers = append(l.writers, writer)
	l.structuredLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
}

// Level returns the current log level.
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel updates the log level of both underlying loggers.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.structuredLogger = l.structuredLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace logs a trace event.
func (l *Logger) Trace(args ...any) {
	l.emit(l.consoleLogger.Trace(), l.structuredLogger.Trace(), args)
}

// Debug logs a debug event.
func (l *Logger) Debug(args ...any) {
	l.emit(l.consoleLogger.Debug(), l.structuredLogger.Debug(), args)
}

// Info logs an info event.
func (l *Logger) Info(args ...any) {
	l.emit(l.consoleLogger.Info(), l.structuredLogger.Info(), args)
}

// Warn logs a warning event.
func (l *Logger) Warn(args ...any) {
	l.emit(l.consoleLogger.Warn(), l.structuredLogger.Warn(), args)
}

// Error logs an error event.
func (l *Logger) Error(args ...any) {
	l.emit(l.consoleLogger.Error(), l.structuredLogger.Error(), args)
}

// Panic logs a panic event and panics.
func (l *Logger) Panic(args ...any) {
	l.emit(l.consoleLogger.Panic(), l.structuredLogger.Panic(), args)
}

// emit assembles a log event from the variadic arguments and sends it to both underlying loggers.
// Arguments may include at most one error and one Fields value; everything else is concatenated into
// the message. Stack traces accompany errors when the level is debug or lower.
func (l *Logger) emit(consoleEvent *zerolog.Event, structuredEvent *zerolog.Event, args []any) {
	message, err, fields := buildMessage(args)

	consoleEvent.Err(err)
	structuredEvent.Err(err)
	if err != nil && l.level <= zerolog.DebugLevel {
		consoleEvent.Stack()
		structuredEvent.Stack()
	}
	if fields != nil {
		consoleEvent.Any("info", fields)
		structuredEvent.Any("info", fields)
	}

	// The structured message is deferred so every channel still receives a panic event.
	defer structuredEvent.Msg(message)
	consoleEvent.Msg(message)
}

// buildMessage splits the variadic log arguments into the message text, an optional error, and
// optional structured fields.
func buildMessage(args []any) (string, error, Fields) {
	var (
		parts  []string
		err    error
		fields Fields
	)
	for _, arg := range args {
		switch typed := arg.(type) {
		case error:
			err = typed
		case Fields:
			fields = typed
		default:
			parts = append(parts, fmt.Sprintf("%v", typed))
		}
	}
	return strings.Join(parts, ""), err, fields
}

// consoleWriter builds the console output format: no timestamps, lowercase level tags.
func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{Out: out}
	writer.FormatTimestamp = func(any) string {
		return ""
	}
	return writer
}
