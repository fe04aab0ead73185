// Package logging is the package-level logging facade used throughout
// rudp, shaped after the teacher's pkg/logger (same Debug/Info/Warn/Error
// call sites, package-level, one shared instance) but backed by logrus so
// fields attach structured context (peer address, sequence number) instead
// of being string-formatted into the message.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses and applies a logrus level name ("debug", "info", "warn",
// "error"), falling back silently to the current level on a bad name.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	std.SetLevel(parsed)
}

// Fields is a shorthand for structured log context.
type Fields = logrus.Fields

// Debug logs a debug-level message with optional structured fields.
func Debug(msg string, fields Fields) {
	std.WithFields(fields).Debug(msg)
}

// Info logs an info-level message with optional structured fields.
func Info(msg string, fields Fields) {
	std.WithFields(fields).Info(msg)
}

// Warn logs a warn-level message with optional structured fields.
func Warn(msg string, fields Fields) {
	std.WithFields(fields).Warn(msg)
}

// Error logs an error-level message with optional structured fields.
func Error(msg string, fields Fields) {
	std.WithFields(fields).Error(msg)
}
