//go:build !ios && !android && (amd64 || arm64)

package scgo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/obinnaokechukwu/scgo/internal/logging"
)

// Logger returns the logger scgo reports to. Callout panics and other
// failures that cannot be returned as errors are logged here.
func Logger() *slog.Logger {
	return logging.Logger()
}

// SetLogger replaces the scgo logger. Pass nil to restore slog.Default().
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// SetLogLevel installs a text logger on stderr that reports messages at
// level or above. Supported levels: debug, info, warn, error.
func SetLogLevel(level string) error {
	return logging.Configure(level)
}

// LogCallback is called for each scgo log message at or above the level it
// was installed with. message includes the record's attributes as key=value
// pairs.
type LogCallback func(level slog.Level, message string)

// SetLogCallback routes scgo's log messages to cb. Pass nil to restore
// slog.Default().
func SetLogCallback(level slog.Level, cb LogCallback) {
	if cb == nil {
		logging.SetLogger(nil)
		return
	}
	logging.SetLogger(slog.New(&callbackHandler{level: level, cb: cb}))
}

// callbackHandler adapts a LogCallback to slog.Handler.
type callbackHandler struct {
	level slog.Level
	cb    LogCallback
	attrs []slog.Attr
	group string
}

func (h *callbackHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *callbackHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", h.qualify(a.Key), a.Value.Resolve())
		return true
	})
	h.cb(r.Level, b.String())
	return nil
}

func (h *callbackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &c
}

func (h *callbackHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = h.qualify(name)
	return &c
}

func (h *callbackHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}
