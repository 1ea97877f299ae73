// Package logging configures the process-wide slog logger.
//
// Two formats are supported: "pretty" writes colored lines through tint for
// local use, "json" writes one JSON object per record for log shippers.
//
//	logging.Setup("debug", "pretty")
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

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Setup installs the default logger at the named level and format.
func Setup(level, format string) {
	h, err := NewHandler(os.Stderr, ParseLevel(level), format)
	if err != nil {
		h = prettyHandler(os.Stderr, ParseLevel(level))
	}
	slog.SetDefault(slog.New(h))
}

// NewHandler builds a handler writing to w.
func NewHandler(w io.Writer, level slog.Level, format string) (slog.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatPretty:
		return prettyHandler(w, level), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func prettyHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
	})
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
