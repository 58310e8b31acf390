package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the global logger instance, a no-op until InitLoggerWithConfig
	// runs
	Log = zap.NewNop()
)

// InitLoggerWithConfig builds the global logger. JSON output uses the
// production encoder with ISO8601 timestamps, otherwise a colored console
// encoder is used.
func InitLoggerWithConfig(level string, json bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var config zap.Config
	if json {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	// CLI output goes to stdout, keep logs off it
	config.OutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	Log = l
	return nil
}

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
