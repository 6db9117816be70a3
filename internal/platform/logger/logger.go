package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/account-service/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel converts a configured level name (case-insensitive) into a
// slog.Level. The second result is false for unknown names, in which case
// slog.LevelInfo is returned.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger writing to
// stdout, and additionally to a size-rotated file when cfg.LogFile is set.
// The logger is installed as the slog default.
//
// The returned io.Closer releases the log file and must be closed on shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    max(1, cfg.LogFileMaxSizeMB),
			MaxBackups: max(0, cfg.LogFileMaxBackups),
			MaxAge:     max(0, cfg.LogFileMaxAgeDays),
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	logger := New(out, cfg.LogLevel)
	slog.SetDefault(logger)

	return logger, closer, nil
}

// New builds a JSON logger writing to w at the named level. An unknown level
// falls back to info and emits a warning through the new logger.
func New(w io.Writer, level string) *slog.Logger {
	lvl, ok := ParseLevel(level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			slog.String("configured_level", level),
			slog.String("default_level", "info"))
	}
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
