// Package logger provides leveled, field-based logging for linelab.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level represents log level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// Config holds logger configuration
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// Logger is a leveled logger writing structured key=value fields
type Logger struct {
	level  Level
	format string
	logger *log.Logger
}

// Field is one structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// New creates a logger from the configuration. A nil output defaults to
// stdout; an unknown level defaults to info.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	return &Logger{
		level:  parseLevel(cfg.Level),
		format: cfg.Format,
		logger: log.New(output, "", log.LstdFlags),
	}
}

// WithComponent returns a child logger whose lines carry a component prefix
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		level:  l.level,
		format: l.format,
		logger: log.New(l.logger.Writer(), fmt.Sprintf("[%s] ", component), log.LstdFlags),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) { l.write(DebugLevel, msg, fields) }

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) { l.write(InfoLevel, msg, fields) }

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) { l.write(WarnLevel, msg, fields) }

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) { l.write(ErrorLevel, msg, fields) }

func (l *Logger) write(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(levelNames[level])
	sb.WriteString("] ")
	sb.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&sb, " %s=%v", f.Key, f.Value)
	}
	l.logger.Print(sb.String())
}

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field constructors

// String creates a string field
func String(key, val string) Field {
	return Field{Key: key, Value: val}
}

// Int creates an int field
func Int(key string, val int) Field {
	return Field{Key: key, Value: val}
}

// Int64 creates an int64 field
func Int64(key string, val int64) Field {
	return Field{Key: key, Value: val}
}

// Float64 creates a float64 field
func Float64(key string, val float64) Field {
	return Field{Key: key, Value: val}
}

// Bool creates a bool field
func Bool(key string, val bool) Field {
	return Field{Key: key, Value: val}
}

// Duration creates a duration field
func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Value: val}
}

// Error creates an error field
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "nil"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with any value
func Any(key string, val interface{}) Field {
	return Field{Key: key, Value: val}
}
