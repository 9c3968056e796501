// Package logger provides the process-wide Zap sugared logger.
// It is configured from LOG_LEVEL and SERVER_ENVIRONMENT and offers helpers
// for masking secrets before they reach the logs.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest switches the logger to a stdout development config for test runs.
var IsTest bool

func initLoggerInternal() {
	var zapLogger *zap.Logger
	var err error

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		level = zapcore.InfoLevel
	}

	switch {
	case IsTest:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stdout"}
		zapLogger, err = cfg.Build()
	case os.Getenv("SERVER_ENVIRONMENT") == "production":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		zapLogger, err = cfg.Build()
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err = cfg.Build()
	}

	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zapLogger.Sugar()
}

// InitLogger initializes the global logger. Safe for concurrent calls.
func InitLogger() {
	once.Do(initLoggerInternal)
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(initLoggerInternal)
	return logger
}

// Close flushes buffered log entries. Call it before the process exits.
func Close() error {
	if logger != nil && !IsTest {
		err := logger.Sync()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		}
		return err
	}
	return nil
}

// MaskSensitiveString keeps the first prefixLen and last suffixLen characters
// of s and elides the rest. Short strings are fully masked.
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}
	if len(s) < (prefixLen + suffixLen + 3) {
		return strings.Repeat("*", len(s))
	}
	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskConnectionString hides the password in URL-style and key=value
// connection strings. Best effort only.
func MaskConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	masked := connStr
	if idx := strings.Index(masked, "://"); idx != -1 {
		if credIdx := strings.Index(masked[idx+3:], "@"); credIdx != -1 {
			userInfo := masked[idx+3 : idx+3+credIdx]
			if passIdx := strings.Index(userInfo, ":"); passIdx != -1 {
				masked = strings.Replace(masked, userInfo, userInfo[:passIdx]+":***", 1)
			}
		}
	}

	if kvIdx := strings.Index(masked, "password="); kvIdx != -1 {
		start := kvIdx + len("password=")
		endIdx := strings.Index(masked[start:], " ")
		if endIdx == -1 {
			masked = masked[:start] + "***"
		} else {
			masked = masked[:start] + "***" + masked[start+endIdx:]
		}
	}
	return masked
}
