// Package logging owns the process-wide zap logger.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[zap.SugaredLogger]

func init() {
	current.Store(zap.NewNop().Sugar())
}

// New builds a console logger that writes to stderr. Debug mode uses the
// development config; otherwise only warnings and errors are shown.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.Sampling = nil
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Init builds a logger with New and installs it as the global one.
func Init(debug bool) (*zap.SugaredLogger, error) {
	logger, err := New(debug)
	if err != nil {
		return nil, err
	}
	Set(logger)
	return logger, nil
}

// L returns the global logger. It is a no-op logger until Set or Init is called.
func L() *zap.SugaredLogger {
	return current.Load()
}

// Set replaces the global logger; nil restores the no-op logger.
func Set(logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	current.Store(logger)
}

// Sync flushes the global logger, ignoring the errors stderr reports on some platforms.
func Sync() {
	_ = L().Sync()
}
