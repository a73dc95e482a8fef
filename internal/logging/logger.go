package logging

import (
	"fmt"

	"github.com/mikey/linkedin-prioritizer/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is shared by every logger built here so a config reload can change it
var Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// ParseLevel maps a config value to a zap level, defaulting to info
func ParseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger initializes a logger based on configuration
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	Level.SetLevel(ParseLevel(cfg.GetString("logging.level")))
	return build(cfg.GetString("logging.format") == "json")
}

// InitConsoleLogger initializes a console-friendly logger
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	if verbose {
		Level.SetLevel(zapcore.DebugLevel)
	} else {
		Level.SetLevel(zapcore.InfoLevel)
	}
	return build(jsonFormat)
}

// Reload applies the logging level of a reloaded configuration
func Reload(cfg *config.Config, logger *zap.Logger) {
	level := ParseLevel(cfg.GetString("logging.level"))
	if level != Level.Level() {
		Level.SetLevel(level)
		logger.Info("Log level changed", zap.Stringer("level", level))
	}
}

func build(jsonFormat bool) (*zap.Logger, error) {
	var logConfig zap.Config
	if jsonFormat {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logConfig.Level = Level

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}
