package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/havenhome/haven-core/internal/infrastructure/config"
)

// Logger wraps slog.Logger. Every record carries service and version
// attributes so aggregated logs stay attributable. Safe for concurrent
// use.
type Logger struct {
	*slog.Logger
}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds a Logger from config. Unknown levels fall back to info and
// unknown formats to JSON, so a typo in config degrades rather than
// breaking startup.
func New(cfg config.LoggingConfig, version string) *Logger {
	level, ok := levelNames[strings.ToLower(cfg.Level)]
	if !ok {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "haven"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// With returns a Logger that adds the given attributes to every record.
//
//	sceneLog := log.With("component", "scene")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default returns a stdout JSON logger at info level, used during
// startup before the config file has been read.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
