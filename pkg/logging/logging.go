// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup(os.Stderr, "info")   // level from config
//	logging.SetupFromEnv(os.Stderr)    // level from LOG_LEVEL
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint handler writing to w as the default slog logger and
// returns it. An unknown level falls back to INFO.
func Setup(w io.Writer, level string) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return SetupWithLevel(w, lvl)
}

// SetupFromEnv is Setup with the level taken from LOG_LEVEL.
func SetupFromEnv(w io.Writer) *slog.Logger {
	return Setup(w, os.Getenv("LOG_LEVEL"))
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(New(w, level))
	slog.SetDefault(logger)
	return logger
}

// New returns the tint handler used by Setup. Colors are disabled when w
// is not a terminal-backed *os.File.
func New(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
		NoColor:    !isTerminal(w),
	})
}

// ParseLevel maps debug, info, warn and error to slog levels. The empty
// string is INFO.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
