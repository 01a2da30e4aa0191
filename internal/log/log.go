// Package log provides a structured logging wrapper around logrus.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger for dependency injection
type Logger struct {
	log *logrus.Logger
}

// New creates a logger writing to stdout.
// The level is read from LOG_LEVEL and defaults to info.
func New() *Logger {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a logger writing to w
func NewWithOutput(w io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     w == os.Stdout,
	})

	level, ok := parseLevel(os.Getenv("LOG_LEVEL"))
	if !ok {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return &Logger{log: l}
}

// parseLevel maps the accepted level names; fatal and panic are only accepted by SetLevel
func parseLevel(level string) (logrus.Level, bool) {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel, true
	case "debug":
		return logrus.DebugLevel, true
	case "info":
		return logrus.InfoLevel, true
	case "warn", "warning":
		return logrus.WarnLevel, true
	case "error":
		return logrus.ErrorLevel, true
	default:
		return logrus.InfoLevel, false
	}
}

// SetLevel changes the level at runtime; unknown names are ignored
func (l *Logger) SetLevel(level string) {
	switch strings.ToLower(level) {
	case "fatal":
		l.log.SetLevel(logrus.FatalLevel)
	case "panic":
		l.log.SetLevel(logrus.PanicLevel)
	default:
		if lvl, ok := parseLevel(level); ok {
			l.log.SetLevel(lvl)
		}
	}
}

// GetLogrus returns the underlying logrus instance
func (l *Logger) GetLogrus() *logrus.Logger {
	return l.log
}

// Trace logs trace-level messages
func (l *Logger) Trace(format string, v ...interface{}) {
	l.log.Tracef(format, v...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

// DebugWithFields logs a debug message with structured fields
func (l *Logger) DebugWithFields(fields logrus.Fields, format string, v ...interface{}) {
	l.log.WithFields(fields).Debugf(format, v...)
}

// Info logs informational messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(fields logrus.Fields, format string, v ...interface{}) {
	l.log.WithFields(fields).Infof(format, v...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}

// WarnWithFields logs a warning with structured fields
func (l *Logger) WarnWithFields(fields logrus.Fields, format string, v ...interface{}) {
	l.log.WithFields(fields).Warnf(format, v...)
}

// Error logs error messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.log.Errorf(format, v...)
}

// ErrorWithFields logs an error message with structured fields
func (l *Logger) ErrorWithFields(fields logrus.Fields, format string, v ...interface{}) {
	l.log.WithFields(fields).Errorf(format, v...)
}

// ErrorWithErr logs err.Error() as the message and attaches err under the "error" field
func (l *Logger) ErrorWithErr(fields logrus.Fields, err error) {
	l.log.WithFields(fields).WithError(err).Error(err.Error())
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log.Fatalf(format, v...)
}

// WithField creates an entry with one structured field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.log.WithField(key, value)
}

// WithFields creates an entry with structured fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}
