// Package logger owns the process-wide slog handler. Events are named
// "area.event" and carry flat key/value attributes.
package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/lumberjack.v2"

	"github.com/MANGOpali/attendance-backend/internal/config"
)

// New builds a JSON logger writing to the sinks cfg enables. Stdout is used
// when none is enabled.
func New(cfg config.LogConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(sink(cfg), &slog.HandlerOptions{Level: parseLevel(cfg.Level)}))
}

// Init installs New(cfg) as the default logger.
func Init(cfg config.LogConfig) {
	slog.SetDefault(New(cfg))
	Info("logger.initialized", "level", cfg.Level, "file", cfg.File)
}

func sink(cfg config.LogConfig) io.Writer {
	var rotating io.Writer
	if cfg.File != "" {
		rotating = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
	}
	switch {
	case rotating != nil && cfg.Console:
		return io.MultiWriter(os.Stdout, rotating)
	case rotating != nil:
		return rotating
	default:
		return os.Stdout
	}
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

// Log emits msg at a level chosen at runtime.
func Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	slog.Default().Log(ctx, level, msg, args...)
}

// LevelForStatus maps an HTTP status to the level its request is logged at.
func LevelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// StdLogger adapts the default handler for libraries that want a *log.Logger.
func StdLogger(level slog.Level) *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), level)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
