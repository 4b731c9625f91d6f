package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gunit/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"WARN", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"verbose", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected.Level(), ParseLevel(tt.level))
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			cfg := config.New()
			cfg.LogFormat = format
			cfg.LogLevel = "error"

			logger, err := NewLogger(cfg)
			require.NoError(t, err)
			assert.False(t, logger.Core().Enabled(zap.WarnLevel))
			assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
		})
	}
}
