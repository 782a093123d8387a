package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	t.Setenv(EndpointEnvVar, "")

	shutdown, err := Setup(context.Background(), "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	t.Setenv(EndpointEnvVar, "")

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "mailbox", "INBOX")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "mailbox=INBOX")
}

func TestTeeHandlerFansOut(t *testing.T) {
	var debug, warn bytes.Buffer
	tee := teeHandler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	logger := slog.New(tee).With("op", "search")

	logger.Debug("detail")
	logger.Warn("skipped")

	assert.Contains(t, debug.String(), "detail")
	assert.Contains(t, debug.String(), "skipped")
	assert.NotContains(t, warn.String(), "detail")
	assert.Contains(t, warn.String(), "op=search")
}
