// Package logger provides structured logging for the agent.
package logger

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger handles structured logging of messages and key-value pairs,
// scoped to a namespace.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
}

// NewLogger returns a new Logger instance configured by the given config.
func NewLogger(ns string, conf Config) *Logger {
	base := logrus.New()
	l := &Logger{
		base:  base,
		entry: base.WithField("ns", ns),
	}
	l.Configure(conf)
	return l
}

// New returns a new Logger instance with default configuration.
func New(ns string, args ...interface{}) *Logger {
	return NewLogger(ns, DefaultConfig()).WithFields(args...)
}

// Sub returns a child logger with a new namespace and the given fields.
func (l *Logger) Sub(ns string, args ...interface{}) *Logger {
	f := fields(args...)
	f["ns"] = ns
	return &Logger{base: l.base, entry: l.entry.WithFields(f)}
}

// WithFields returns a child logger with the given fields added to all
// log messages.
func (l *Logger) WithFields(args ...interface{}) *Logger {
	return &Logger{base: l.base, entry: l.entry.WithFields(fields(args...))}
}

// Debug logs a debug message.
//
// After the first argument, arguments are key-value pairs which are written
// as structured fields:
//
//	log.Debug("some message", "key1", value1, "key2", value2)
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args...)).Debug(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args...)).Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args...)).Warn(msg)
}

// Error logs an error message.
//
// Error has a two-argument shortcut for logging an error value:
//
//	log.Error("couldn't submit job", err)
func (l *Logger) Error(msg string, args ...interface{}) {
	var f logrus.Fields
	if len(args) == 1 {
		f = fields("error", args[0])
	} else {
		f = fields(args...)
	}
	l.entry.WithFields(f).Error(msg)
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		l.base.SetLevel(logrus.DebugLevel)
	case "info":
		l.base.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		l.base.SetLevel(logrus.WarnLevel)
	case "error":
		l.base.SetLevel(logrus.ErrorLevel)
	default:
		l.base.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput sets the logging output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.base.SetOutput(w)
}

// Discard configures the logger to discard all logs.
func (l *Logger) Discard() {
	l.base.SetOutput(io.Discard)
}

// fields converts a list of key-value pair arguments into logrus fields.
// A trailing key without a value is recorded under "unknown".
func fields(args ...interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok {
			k = "unknown"
		}
		if i+1 < len(args) {
			f[k] = args[i+1]
		} else {
			f["unknown"] = args[i]
		}
	}
	return f
}
