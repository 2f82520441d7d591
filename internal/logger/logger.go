package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup creates a text logger at the given level and makes it the default.
// Output goes to w, or stderr when w is nil.
func Setup(logLevel string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handlerOptions := &slog.HandlerOptions{Level: getLogLevel(logLevel)}

	logger := slog.New(slog.NewTextHandler(w, handlerOptions))
	slog.SetDefault(logger)
	return logger
}

// ValidateLevel ensures the user-provided log level matches the supported set.
func ValidateLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", level)
}

func getLogLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
