package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"campusevents/internal/config"
)

// New builds the application logger. The terminal belongs to the UI, so output
// goes to cfg.File; "stderr" or "stdout" are accepted for headless runs.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	output := cfg.File
	if output == "" {
		output = config.DefaultLogFile
	}
	if output != "stderr" && output != "stdout" {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
	}

	zc := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "json",
		DisableStacktrace: true,
		EncoderConfig:     zap.NewProductionEncoderConfig(),
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Encoding == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	return zc.Build()
}
