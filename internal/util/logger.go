package util

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewZapLogger() *zap.SugaredLogger {
	stdout := zapcore.AddSync(os.Stdout)

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), stdout, level)

	return zap.New(core).Sugar()
}
