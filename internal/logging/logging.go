package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gunit/internal/config"
)

// NewLogger builds a zap logger based on runner config.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.LogFormat, "console") {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	// stdout carries progress and the summary
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.LogLevel))

	return zapCfg.Build()
}

// ParseLevel maps a config level name to a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
