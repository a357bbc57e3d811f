// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance.
var Log zerolog.Logger

var levels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	Log = build(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func build(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel sets the global log level. Unknown names fall back to info.
func SetLevel(level string) {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// SetJSON switches to JSON lines on stderr.
func SetJSON() {
	SetOutput(os.Stderr)
}

// SetOutput sends JSON log lines to w.
func SetOutput(w io.Writer) {
	Log = build(w)
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) *zerolog.Logger {
	l := Log.With().Str("component", component).Logger()
	return &l
}
