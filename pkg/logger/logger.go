package logger

import (
	"os"

	"go.uber.org/zap"
)

var base *zap.Logger

func init() {
	if os.Getenv("DEBUG") == "true" {
		base, _ = zap.NewDevelopment()
	} else {
		base, _ = zap.NewProduction()
	}
}

// L returns the process logger.
func L() *zap.Logger {
	return base
}

// With returns a child logger carrying the supplied fields.
func With(fields ...zap.Field) *zap.Logger {
	return base.With(fields...)
}

// Sync flushes buffered log entries, for use on shutdown.
func Sync() {
	_ = base.Sync()
}
