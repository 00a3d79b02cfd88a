// Package logging provides config-driven categorized logging for palletscan.
// Logs are written to a single file under the configured directory, one named
// zap logger per category. The terminal UI owns stdout, so nothing is written
// there. When debug_mode is false every logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryScan    Category = "scan"    // Pallet scan workflow
	CategoryRPC     Category = "rpc"     // JSON-RPC transport
	CategoryJournal Category = "journal" // Scan history store
	CategoryStation Category = "station" // Host lines, handler registration
	CategoryUI      Category = "ui"      // Terminal UI events
)

// LogFileName is the file created inside Options.Dir.
const LogFileName = "palletscan.log"

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Dir        string
	Level      string // debug, info, warn, error
	DebugMode  bool   // master toggle; false = no logging
	JSONFormat bool   // json encoder instead of console

	// CategoryEnabled decides per category; nil enables every category.
	// The station passes config.LoggingConfig.IsCategoryEnabled.
	CategoryEnabled func(category string) bool
}

// Logger is a category-scoped printf-style logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	opts    Options
	base    *zap.Logger = zap.NewNop()
	loggers             = make(map[Category]*Logger)
	logPath string
	logFile *os.File
)

// Initialize builds the shared zap core. Safe to call more than once; the
// previous core is synced and replaced.
func Initialize(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	_ = base.Sync()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	opts = o
	loggers = make(map[Category]*Logger)
	base = zap.NewNop()
	logPath = ""

	if !o.DebugMode {
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("log directory required")
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	path := filepath.Join(o.Dir, LogFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if o.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(file), zap.NewAtomicLevelAt(parseLevel(o.Level)))
	base = zap.New(core)
	logPath = path
	logFile = file

	base.Named(string(CategoryBoot)).Sugar().Infof("logging initialized: dir=%s level=%s", o.Dir, o.Level)
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Path returns the active log file, or "" when logging is disabled.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !opts.DebugMode {
		return false
	}
	if opts.CategoryEnabled == nil {
		return true
	}
	return opts.CategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	z := zap.NewNop()
	if categoryEnabledLocked(category) {
		z = base.Named(string(category))
	}
	l := &Logger{category: category, sugar: z.Sugar()}
	loggers[category] = l
	return l
}

// Category returns the logger's category.
func (l *Logger) Category() Category { return l.category }

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a logger carrying structured key-value context.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// CloseAll flushes buffered entries (call at shutdown).
func CloseAll() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// Scan logs to the scan category
func Scan(format string, args ...interface{}) {
	Get(CategoryScan).Info(format, args...)
}

// ScanDebug logs debug to the scan category
func ScanDebug(format string, args ...interface{}) {
	Get(CategoryScan).Debug(format, args...)
}

// RPC logs to the rpc category
func RPC(format string, args ...interface{}) {
	Get(CategoryRPC).Info(format, args...)
}

// RPCDebug logs debug to the rpc category
func RPCDebug(format string, args ...interface{}) {
	Get(CategoryRPC).Debug(format, args...)
}

// Journal logs to the journal category
func Journal(format string, args ...interface{}) {
	Get(CategoryJournal).Info(format, args...)
}

// Station logs to the station category
func Station(format string, args ...interface{}) {
	Get(CategoryStation).Info(format, args...)
}

// UI logs debug to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Debug(format, args...)
}
