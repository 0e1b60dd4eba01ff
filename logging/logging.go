// Package logging is the process-wide debug log. It keeps the simple
// Printf-style surface the rest of the tool uses while writing structured
// JSON records through zap underneath.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  *zap.SugaredLogger
	isSetup bool
)

// SetupLogger initializes the debug logger writing to the specified file.
// Calling it again is a no-op.
func SetupLogger(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{logFilePath}
	cfg.ErrorOutputPaths = []string{logFilePath}

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logger = built.Sugar()
	logger.Infof("--- Debug log started at %s ---", time.Now().Format(time.RFC3339))
	isSetup = true
	return nil
}

// CloseLogger flushes and releases the logger.
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		logger.Infof("--- Debug log closed at %s ---", time.Now().Format(time.RFC3339))
		_ = logger.Sync()
		logger = nil
		isSetup = false
	}
}

// LogInfo logs an information message.
func LogInfo(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		logger.Infof(format, args...)
	}
}

// DebugLog logs a message if the logger has been set up.
func DebugLog(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		logger.Debugf(format, args...)
	}
}

// LogError logs an error message.
func LogError(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		logger.Errorf(format, args...)
	}
}

// LogWarning logs a warning message.
func LogWarning(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		logger.Warnf(format, args...)
	}
}

// LogImageProcessed logs the outcome of hashing one image.
func LogImageProcessed(path string, success bool, errMsg string) {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		if success {
			logger.Debugf("PROCESSED: %s", path)
		} else {
			logger.Warnf("FAILED: %s - Error: %s", path, errMsg)
		}
	}
}
