package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// New builds the application logger from the logging configuration. Console
// output goes to stderr; when a file is configured a JSON core writing to a
// rotating file is added.
func New(cfg entities.LoggingConfig) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit console writer
func NewWithWriter(cfg entities.LoggingConfig, console io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(cfg), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.GetMaxSize(),
			MaxBackups: cfg.GetMaxBackups(),
			MaxAge:     cfg.GetMaxAge(),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder(), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// parseLevel maps the configured level to a zap level; verbose forces debug
func parseLevel(cfg entities.LoggingConfig) (zapcore.Level, error) {
	if cfg.Verbose {
		return zapcore.DebugLevel, nil
	}

	switch cfg.GetLevel() {
	case entities.LogLevelDebug:
		return zapcore.DebugLevel, nil
	case entities.LogLevelInfo:
		return zapcore.InfoLevel, nil
	case entities.LogLevelWarn:
		return zapcore.WarnLevel, nil
	case entities.LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", cfg.Level)
	}
}

func jsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func consoleEncoder(cfg entities.LoggingConfig) zapcore.Encoder {
	if cfg.JSONFormat {
		return jsonEncoder()
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	return zapcore.NewConsoleEncoder(encoderConfig)
}
