package logging

import (
	"context"
	"log/slog"
)

// LevelFatal sits above slog.LevelError. Records at this level flag failures
// the operator must inspect by hand; logging at it never terminates the process.
const LevelFatal = slog.Level(12)

// Fatal logs msg at LevelFatal. It does not exit.
func Fatal(logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), LevelFatal, msg, attrs...)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "FATAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
