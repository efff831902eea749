// Package logger provides a structured logging solution using the Zap logging library.
// It includes utilities for creating and managing loggers, setting log levels,
// and integrating logging with context for enhanced traceability.
// The package supports key-value logging and customizable log levels,
// making it suitable for both development and production environments.
package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// mu guards replacement of the global logger instance.
	mu sync.RWMutex

	// globalLogger is the process-wide logger used by the package-level helpers.
	globalLogger *zap.Logger

	// level is the atomic, mutable level enabler shared by the global logger.
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	globalLogger = New(level)
}

// New builds a zap.Logger writing human-readable console output at the given level.
// A nil level defaults to info.
func New(lvl zapcore.LevelEnabler) *zap.Logger {
	if lvl == nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		lvl,
	)

	return zap.New(core)
}

// Logger returns the current global logger instance.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return globalLogger
}

// SetLogger replaces the global logger instance. Primarily used by tests.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()

	globalLogger = l
}

// Level returns the level currently enabled on the global logger.
func Level() zapcore.Level {
	return level.Level()
}

// SetLevel updates the level enabled on the global logger.
func SetLevel(lvl zapcore.Level) {
	level.SetLevel(lvl)
}

// ParseLogLevel parses a case-insensitive, whitespace-tolerant level name.
// It returns (level, true) on success, or (InfoLevel, false) if the name is unrecognized.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	var lvl zapcore.Level

	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(strings.ToLower(s)))); err != nil {
		return zapcore.InfoLevel, false
	}

	return lvl, true
}

// named extracts a logger scoped to the caller's component when one is present on ctx.
func named(ctx context.Context) *zap.Logger {
	l := Logger()

	if name, ok := ctx.Value(componentKey{}).(string); ok && name != "" {
		return l.Named(name)
	}

	return l
}

// componentKey is the context key used by WithComponent.
type componentKey struct{}

// WithComponent attaches a component name to the context so subsequent log calls are named.
func WithComponent(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, componentKey{}, name)
}

// Debug logs a message at debug level.
func Debug(ctx context.Context, msg string) { named(ctx).Debug(msg) }

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...any) { named(ctx).Sugar().Debugf(format, args...) }

// DebugKV logs a message with structured key-value pairs at debug level.
func DebugKV(ctx context.Context, msg string, kv ...any) { named(ctx).Sugar().Debugw(msg, kv...) }

// Info logs a message at info level.
func Info(ctx context.Context, msg string) { named(ctx).Info(msg) }

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...any) { named(ctx).Sugar().Infof(format, args...) }

// InfoKV logs a message with structured key-value pairs at info level.
func InfoKV(ctx context.Context, msg string, kv ...any) { named(ctx).Sugar().Infow(msg, kv...) }

// Warn logs a message at warn level.
func Warn(ctx context.Context, msg string) { named(ctx).Warn(msg) }

// Warnf logs a formatted message at warn level.
func Warnf(ctx context.Context, format string, args ...any) { named(ctx).Sugar().Warnf(format, args...) }

// WarnKV logs a message with structured key-value pairs at warn level.
func WarnKV(ctx context.Context, msg string, kv ...any) { named(ctx).Sugar().Warnw(msg, kv...) }

// Error logs a message at error level.
func Error(ctx context.Context, msg string) { named(ctx).Error(msg) }

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...any) { named(ctx).Sugar().Errorf(format, args...) }

// ErrorKV logs a message with structured key-value pairs at error level.
func ErrorKV(ctx context.Context, msg string, kv ...any) { named(ctx).Sugar().Errorw(msg, kv...) }

// Fatal logs a message at fatal level and terminates the process.
func Fatal(ctx context.Context, msg string) { named(ctx).Fatal(msg) }

// Fatalf logs a formatted message at fatal level and terminates the process.
func Fatalf(ctx context.Context, format string, args ...any) { named(ctx).Sugar().Fatalf(format, args...) }
