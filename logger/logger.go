// Package logger holds the process wide zap logger.  Output always goes to
// stderr as stdout is reserved for analysis results
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logMu sync.RWMutex
	log   *zap.Logger
	sugar *zap.SugaredLogger
)

// Options describes logger construction parameters
type Options struct {
	// Level is one of debug, info, warn, error
	Level string
	// Format is json, console or auto.  Auto picks console when stderr is a
	// terminal
	Format string
}

// Init builds a logger from the options and installs it as the global logger
func Init(opts Options) error {

	l, err := New(opts)

	if err != nil {
		return err
	}

	setLogger(l)
	return nil
}

// New constructs a zap logger writing to stderr
func New(opts Options) (*zap.Logger, error) {

	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))

	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var cfg zap.Config

	switch strings.ToLower(defaultString(opts.Format, "auto")) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "auto":
		if isatty.IsTerminal(os.Stderr.Fd()) {
			cfg = zap.NewDevelopmentConfig()
		} else {
			cfg = zap.NewProductionConfig()
		}
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// setLogger replaces the global logger, syncing the previous one
func setLogger(l *zap.Logger) {
	logMu.Lock()
	defer logMu.Unlock()

	zap.ReplaceGlobals(l)

	if log != nil {
		_ = log.Sync()
	}

	log = l
	sugar = l.Sugar()
}

// Log returns the global *zap.Logger, never nil.  Before Init it returns the
// zap global which is a no-op logger
func Log() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()

	if log != nil {
		return log
	}

	return zap.L()
}

// S returns the global *zap.SugaredLogger, never nil
func S() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()

	if sugar != nil {
		return sugar
	}

	return zap.S()
}

// Sync flushes buffered log entries
func Sync() {
	logMu.RLock()
	defer logMu.RUnlock()

	if log != nil {
		_ = log.Sync()
	}
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
