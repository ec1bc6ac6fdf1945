// Package log provides the structured logger used across the service.
package log

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	// LoggerKeyComponentName is the field key naming the component that logs.
	LoggerKeyComponentName = "component"
	// LoggerKeyCorrelationID is the field key carrying the request correlation id.
	LoggerKeyCorrelationID = "correlation_id"
)

type contextKey string

const correlationIDContextKey contextKey = "correlation_id"

// Field is a single structured log field.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Any creates a field holding an arbitrary value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Error creates the conventional "error" field.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger wraps a logrus entry with the field helpers above.
type Logger struct {
	entry *logrus.Entry
}

var (
	instance *Logger
	once     sync.Once
)

// GetLogger returns the process-wide logger, creating a JSON logger at info level on first use.
func GetLogger() *Logger {
	once.Do(func() {
		base := logrus.New()
		base.SetFormatter(&logrus.JSONFormatter{})
		base.SetLevel(logrus.InfoLevel)
		base.SetOutput(os.Stdout)
		instance = &Logger{entry: logrus.NewEntry(base)}
	})
	return instance
}

// Configure applies level, format and output to the process-wide logger.
func Configure(level, format string, out io.Writer) error {
	logger := GetLogger()
	base := logger.entry.Logger

	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		base.SetLevel(parsed)
	}

	if strings.EqualFold(format, "text") {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{})
	}

	if out != nil {
		base.SetOutput(out)
	}
	return nil
}

// New wraps an existing logrus logger. Used by tests that capture output.
func New(base *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(base)}
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{entry: l.entry.WithFields(toLogrusFields(fields))}
}

// WithContext returns a child logger carrying the correlation id stored in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := CorrelationID(ctx); id != "" {
		return l.With(String(LoggerKeyCorrelationID, id))
	}
	return l
}

// Level reports the current log level as a string.
func (l *Logger) Level() string {
	return l.entry.Logger.GetLevel().String()
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Fatal(msg)
}

// ContextWithCorrelationID stores the correlation id on ctx.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, correlationID)
}

// CorrelationID reads the correlation id stored on ctx.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return id
	}
	return ""
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
