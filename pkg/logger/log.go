package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"staffhub/pkg/config"
)

// Loggers - именованные логгеры по областям приложения.
type Loggers struct {
	Main          *zap.Logger
	Auth          *zap.Logger
	Company       *zap.Logger
	Employee      *zap.Logger
	Communication *zap.Logger
}

func NewLogger(cfg config.LogConfig) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoding := cfg.Encoding
	if encoding != "json" {
		encoding = "console"
	}

	outputs := []string{"stdout"}
	if cfg.File != "" {
		outputs = append(outputs, cfg.File)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	dualConfig := zap.Config{
		Encoding:         encoding,
		Level:            level,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoderConfig,
	}

	dualLogger, err := dualConfig.Build()
	if err != nil {
		panic(err)
	}

	return dualLogger
}

func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:          base,
		Auth:          base.Named("auth"),
		Company:       base.Named("company"),
		Employee:      base.Named("employee"),
		Communication: base.Named("communication"),
	}
}

// NewNopLoggers удобен в тестах.
func NewNopLoggers() *Loggers {
	return NewLoggers(zap.NewNop())
}
