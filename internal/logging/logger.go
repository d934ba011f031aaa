package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger is a leveled logger taking alternating key/value fields.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// DefaultLogger writes one JSON object per line.
type DefaultLogger struct {
	out   *log.Logger
	debug bool
}

// NewDefaultLogger logs to stderr. Debug entries are dropped unless debug is set.
func NewDefaultLogger(debug bool) *DefaultLogger {
	return NewLogger(os.Stderr, debug)
}

// NewLogger logs to w.
func NewLogger(w io.Writer, debug bool) *DefaultLogger {
	return &DefaultLogger{out: log.New(w, "", 0), debug: debug}
}

type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// FieldsToMap converts key1, value1, key2, value2, ... into a map. Keys that
// aren't strings, and a trailing value without a key, get positional names.
func FieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			continue
		}
		key, ok := fields[i].(string)
		if !ok {
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			result[fmt.Sprintf("field_%d_value", i/2)] = fields[i+1]
			continue
		}
		if err, ok := fields[i+1].(error); ok {
			result[key] = err.Error()
			continue
		}
		result[key] = fields[i+1]
	}
	return result
}

func (l *DefaultLogger) logStructured(level, msg string, fields []interface{}) {
	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
	}
	if len(fields) > 0 {
		entry.Fields = FieldsToMap(fields)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// last resort, plain text
		l.out.Printf("[%s] %s %v", level, msg, fields)
		return
	}
	l.out.Println(string(data))
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	if l.debug {
		l.logStructured("DEBUG", msg, fields)
	}
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.logStructured("INFO", msg, fields)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.logStructured("WARN", msg, fields)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.logStructured("ERROR", msg, fields)
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
