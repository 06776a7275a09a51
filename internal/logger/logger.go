package logger

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var log atomic.Pointer[slog.Logger]

// Init sets up the global logger.
// env: "development" gives a readable text output at debug level, anything else JSON at info.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(env string, w io.Writer) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	log.Store(l)
	slog.SetDefault(l)
}

// GetLogger returns the global logger, initialising a development one if Init was never called.
func GetLogger() *slog.Logger {
	if l := log.Load(); l != nil {
		return l
	}
	Init("development")
	return log.Load()
}

// ============================================
// Convenience helpers
// ============================================

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With returns a logger carrying extra fields.
// Example: logger.With("user_id", id, "action", "login").Info("user logged in")
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// WithError returns a logger carrying an error field.
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// ============================================
// Specialised loggers
// ============================================

// MailLog logs an outbound email attempt. Recipients are logged, bodies never are.
func MailLog(kind, to string, err error) {
	fields := []any{
		"kind", kind,
		"to", to,
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("email delivery failed", fields...)
	} else {
		GetLogger().Info("email sent", fields...)
	}
}
