package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/scry-insights/internal/config"
	"github.com/phrazzld/scry-insights/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		level slog.Level
		ok    bool
	}{
		{"debug", "debug", slog.LevelDebug, true},
		{"upper case", "INFO", slog.LevelInfo, true},
		{"warn alias", "warning", slog.LevelWarn, true},
		{"error with spaces", " error ", slog.LevelError, true},
		{"unknown", "verbose", slog.LevelInfo, false},
		{"empty", "", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := logger.ParseLevel(tt.input)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("hidden")
	l.Warn("visible", slog.String("component", "test"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "scry-insights", entries[0]["service"])
	assert.Equal(t, "test", entries[0]["component"])

	assert.Same(t, l, slog.Default())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	ctxLogger, buf := logger.NewTestLogger(t)
	fallback, fallbackBuf := logger.NewTestLogger(t)

	ctx := logger.WithLogger(context.Background(), ctxLogger)
	logger.FromContextOrDefault(ctx, fallback).Info("from context")
	logger.FromContextOrDefault(context.Background(), fallback).Info("from fallback")

	logger.AssertLogContains(t, buf, "from context")
	logger.AssertLogContains(t, fallbackBuf, "from fallback")
	assert.NotContains(t, buf.String(), "from fallback")

	assert.Same(t, ctxLogger, logger.FromContext(ctx))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	assert.Equal(t, ctx, logger.WithLogger(ctx, nil))
}
