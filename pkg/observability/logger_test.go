package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("dashboard served", "user_id", "u-1")

		assert.Contains(t, buf.String(), "dashboard served")
		assert.Contains(t, buf.String(), "user_id=u-1")
	})

	t.Run("json output with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "studyload-api",
			ServiceVersion: "1.2.0",
		})

		logger.Info("ready")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "ready", entry["msg"])
		assert.Equal(t, "studyload-api", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Output: &buf})

		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("stamps ids from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})

		ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-123"), "req-456")
		logger.InfoContext(ctx, "with ids")

		assert.Contains(t, buf.String(), `"correlation_id":"corr-123"`)
		assert.Contains(t, buf.String(), `"request_id":"req-456"`)
	})
}

func TestLoggerFor(t *testing.T) {
	logger := LoggerFor("production", "debug", "")
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = LoggerFor("development", "", "")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogDuration(logger, "migrate", time.Now().Add(-50*time.Millisecond))

	assert.Contains(t, buf.String(), "operation=migrate")
	assert.Contains(t, buf.String(), "duration_ms=")
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "upstream")

	assert.Equal(t, "upstream", CorrelationIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))

	ctx = NewRequestContext(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}
