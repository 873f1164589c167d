package logger

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	tests := []struct {
		name  string
		scope string
	}{
		{"service scope", "search.svc"},
		{"package scope", "cache"},
		{"nested scope", "search.warmer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Scope(tt.scope)
			assert.Equal(t, "scope", attr.Key)
			assert.Equal(t, tt.scope, attr.Value.String())
		})
	}
}

func TestErrorAttr(t *testing.T) {
	err := errors.New("dense retrieval timed out")
	attr := Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
}

func TestErrorAttrNil(t *testing.T) {
	attr := Error(nil)
	assert.Equal(t, "error", attr.Key)
	assert.Nil(t, attr.Value.Any())
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level    string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"warning", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"ERROR", slog.LevelError, slog.LevelWarn},
		{"", slog.LevelInfo, slog.LevelDebug},
		{"nonsense", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			t.Setenv("GO_ENV", "")

			log := NewLogger()
			require.NotNil(t, log)
			assert.True(t, log.Enabled(nil, tt.enabled))
			assert.False(t, log.Enabled(nil, tt.disabled))
		})
	}
}

func TestNewLoggerProduction(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GO_ENV", "production")

	log := NewLogger()
	require.NotNil(t, log)
	assert.True(t, log.Enabled(nil, slog.LevelInfo))
}
