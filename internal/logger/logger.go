package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rustyeddy/tradejournal/config"
)

// New builds the process logger. Logs go to stderr so command output on
// stdout stays clean.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}

	zc := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encoding,
		DisableStacktrace: !cfg.Development,
		EncoderConfig:     encoderConfig(encoding),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	return zc.Build()
}

// encoderConfig uses zap's development layout for console output. Both
// layouts stamp ISO8601 times.
func encoderConfig(encoding string) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	if encoding == "console" {
		ec = zap.NewDevelopmentEncoderConfig()
	}
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return ec
}
