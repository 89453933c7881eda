package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLines parses JSON log lines from buf.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := Setup(LoggerConfig{Level: "warn", Output: &buf})
		require.NoError(t, err)
		require.NotNil(t, log)

		log.Info("hidden")
		log.Warn("shown", "key", "value")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "shown", entries[0]["msg"])
		assert.Equal(t, "WARN", entries[0]["level"])
		assert.Equal(t, "value", entries[0]["key"])
		assert.Same(t, log, slog.Default())
	})

	t.Run("invalid level falls back to info with a warning", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := Setup(LoggerConfig{Level: "loud", Output: &buf})
		require.NoError(t, err)

		log.Debug("hidden")
		log.Info("shown")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 2)
		assert.Equal(t, "invalid log level configured, using default level", entries[0]["msg"])
		assert.Equal(t, "loud", entries[0]["configured_level"])
		assert.Equal(t, "shown", entries[1]["msg"])
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("falls back when empty", func(t *testing.T) {
		assert.Same(t, base, FromContextOrDefault(context.Background(), base))
	})

	t.Run("returns stored logger with request id", func(t *testing.T) {
		buf.Reset()
		ctx := WithRequestID(WithLogger(context.Background(), base), "req-123")

		FromContext(ctx).Info("hello")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "req-123", entries[0]["request_id"])
		assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	})
}
