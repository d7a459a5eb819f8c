package logger

import (
	"log/slog"
	"os"

	"law-rag-platform/internal/config"
)

var Logger *slog.Logger

// InitLogger sets up JSON structured logging. Debug mode lowers the level
// and adds source locations.
func InitLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.GinMode == "debug" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.GinMode == "debug",
	})
	Logger = slog.New(handler)

	Logger.Info("structured logging initialized", "level", level.String())
}

// Package-level helpers so callers do not need a logger handle. Safe to
// call before InitLogger; messages are dropped.

func Info(msg string, args ...any) {
	if Logger != nil {
		Logger.Info(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if Logger != nil {
		Logger.Error(msg, args...)
	}
}

func Debug(msg string, args ...any) {
	if Logger != nil {
		Logger.Debug(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if Logger != nil {
		Logger.Warn(msg, args...)
	}
}
