//go:build !ios && !android && (amd64 || arm64)

package scgo

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogCallback(t *testing.T) {
	type entry struct {
		level slog.Level
		msg   string
	}
	var got []entry
	SetLogCallback(slog.LevelWarn, func(level slog.Level, message string) {
		got = append(got, entry{level, message})
	})
	defer SetLogCallback(0, nil)

	Logger().Info("ignored")
	Logger().With("store", "scgo").WithGroup("ctx").Warn("callout failed", "info", 7)

	require.Len(t, got, 1)
	assert.Equal(t, slog.LevelWarn, got[0].level)
	assert.Equal(t, "callout failed store=scgo ctx.info=7", got[0].msg)
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogger(nil)
	assert.NoError(t, SetLogLevel("debug"))
	assert.True(t, Logger().Enabled(context.Background(), slog.LevelDebug))
	assert.Error(t, SetLogLevel("loud"))
}
