package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/config"
)

func TestMavenHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "info"}).With("system", "reconcile")

	logger.Info("batch reconciled", "exact", 3, "address", "서울특별시 강남구 역삼동")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[INFO] [reconcile] ["), line)
	assert.Contains(t, line, " batch reconciled exact=3 address=\"서울특별시 강남구 역삼동\"\n")
	assert.NotContains(t, line, "system=")
	assert.NotContains(t, line, "\033[")
}

func TestMavenHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "warn"})

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestMavenHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug"}).
		With("batch_id", "b1").
		WithGroup("registry")

	logger.Debug("lookup", "bun", "0123", slog.Group("query", "ji", "0045"))

	line := buf.String()
	assert.Contains(t, line, "[DEBUG]")
	assert.Contains(t, line, "batch_id=b1 registry.bun=0123 registry.query.ji=0045")
}

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

	logger.Debug("record classified", "status", "exact")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "record classified", entry["msg"])
	assert.Equal(t, "exact", entry["status"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
