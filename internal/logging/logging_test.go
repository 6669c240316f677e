package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, Logger().Enabled(context.Background(), level), "level %v", level)
	}
}

func TestForTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	For("reticle").Debug("frame", "candidates", 3)

	out := buf.String()
	assert.Contains(t, out, "component=reticle")
	assert.Contains(t, out, "candidates=3")
}
