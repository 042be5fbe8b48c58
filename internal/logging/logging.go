//go:build !ios && !android && (amd64 || arm64)

// Package logging holds the logger used where scgo cannot return an error,
// such as inside callbacks invoked by the frameworks.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var current atomic.Pointer[slog.Logger]

// Logger returns the scgo logger, falling back to slog.Default().
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger replaces the scgo logger. nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	current.Store(l)
}

// Configure installs a text logger on stderr at the given level.
//
// Supported levels: debug, info, warn, error.
func Configure(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parsed})
	SetLogger(slog.New(h))
	return nil
}

// ParseLevel maps a level name to a slog level. "" means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", LevelInfo:
		return slog.LevelInfo, nil
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}
