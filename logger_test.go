package trainpack

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_NilHandlerDefaults(t *testing.T) {
	log := NewLogger(nil)
	require.NotNil(t, log)
	require.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	require.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestNoopLogger_Discards(t *testing.T) {
	log := NoopLogger()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestNewLogger_CustomHandler(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(slog.NewTextHandler(&buf, nil))

	log.Info("progress", "written", 1, "total", 2)
	require.Contains(t, buf.String(), "progress")
	require.Contains(t, buf.String(), "written=1")
}
