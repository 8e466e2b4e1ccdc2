package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initialises the global slog default logger.
// level may be "debug", "info", "warn", or "error" (default "info").
// format may be "json" or "text" (default "json").
// When file is set, records are appended to it as well as stdout.
// The returned closer releases the file and is never nil.
func Setup(level, format, file string) (io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closer, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}

	slog.SetDefault(New(out, level, format))
	return closer, nil
}

// New builds a logger writing to w with the given level and format
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
