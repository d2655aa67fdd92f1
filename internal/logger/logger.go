package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op logger until Init or SetLogger is called
// so packages can log from tests without any setup.
var Log = zap.NewNop()

// Init builds the default development logger used by the engine and its passes.
func Init() {
	InitWithLevel(zapcore.DebugLevel)
}

// InitWithLevel builds a development logger that drops entries below level
func InitWithLevel(level zapcore.Level) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.DisableStacktrace = true

	log, err := config.Build()
	if err != nil {
		Log = zap.NewNop()
		return
	}
	Log = log
}

// SetLogger replaces the process-wide logger. Passing nil restores the no-op logger.
func SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	Log = log
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = Log.Sync()
}
