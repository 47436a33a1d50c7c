// Package logger provides the slog helpers shared by the repository packages.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(Discard())
}

// New creates a text logger writing to w at the given level name.
// A nil writer logs to stderr.
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, info, warn and error onto slog levels. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Default returns the package default logger (discarding until SetDefault is called).
func Default() *slog.Logger {
	return defaultLogger.Load()
}

// SetDefault sets the package default logger.
func SetDefault(l *slog.Logger) {
	if l == nil {
		l = Discard()
	}
	defaultLogger.Store(l)
}

// OrDefault returns l, or the package default when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Default()
}

// Scope tags a record with the component that produced it.
func Scope(name string) slog.Attr {
	return slog.String("scope", name)
}

// Error wraps err as an attribute.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
