/*
Package logger provides component loggers on top of logrus.

Every logger carries a coloured component prefix in text mode and a
"component" field in JSON mode. Level and format are shared by all loggers
and set once at startup with Configure.
*/
package logger

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const colorReset = "\033[0m"

var ErrNilWriter = errors.New("logger output is nil")

var (
	mu     sync.RWMutex
	level  = logrus.InfoLevel
	asJSON = false
)

// Configure sets the level ("debug", "info", ...) and the format ("text" or "json")
// used by loggers created afterwards. An unknown level falls back to info.
func Configure(lvl, format string) error {
	parsed, err := logrus.ParseLevel(lvl)
	if err != nil {
		parsed = logrus.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()
	level = parsed
	switch strings.ToLower(format) {
	case "", "text":
		asJSON = false
	case "json":
		asJSON = true
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return err
}

// Logger writes tagged messages for one component.
type Logger struct {
	entry  *logrus.Entry
	prefix string
	json   bool
}

// New creates a logger for a component. color is an ANSI colour escape used in text mode.
func New(prefix, color string, out io.Writer) (*Logger, error) {
	if out == nil {
		return nil, ErrNilWriter
	}

	mu.RLock()
	lvl, useJSON := level, asJSON
	mu.RUnlock()

	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(lvl)

	l := &Logger{json: useJSON}
	if useJSON {
		base.SetFormatter(&logrus.JSONFormatter{})
		l.entry = base.WithField("component", prefix)
		return l, nil
	}

	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableQuote:     true,
		ForceColors:      color != "",
		DisableColors:    color == "",
		PadLevelText:     true,
		QuoteEmptyFields: true,
	})
	l.entry = logrus.NewEntry(base)
	if color != "" {
		l.prefix = color + "[" + prefix + "]" + colorReset + " "
	} else {
		l.prefix = "[" + prefix + "] "
	}
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.PanicLevel)
	return &Logger{entry: logrus.NewEntry(base)}
}

// With returns a logger that adds a structured field to every message.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), prefix: l.prefix, json: l.json}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.entry.Debug(l.prefix + msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.entry.Info(l.prefix + msg)
}

// Warning logs a warning.
func (l *Logger) Warning(msg string) {
	l.entry.Warn(l.prefix + msg)
}

// Error logs an error.
func (l *Logger) Error(msg string) {
	l.entry.Error(l.prefix + msg)
}
