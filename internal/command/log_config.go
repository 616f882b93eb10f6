package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeycumines/goap/internal/config"
)

// logConfig holds resolved logging configuration for commands that plan or
// run scenarios.
type logConfig struct {
	level   slog.Level
	logFile io.WriteCloser // nil if no file logging
}

// resolveLogConfig resolves log configuration from flags and config defaults.
// Flag values take precedence; config values (including their environment
// overrides) are used when flags have their zero/default value. The caller
// must Close() the returned logConfig.logFile when done (if non-nil).
func resolveLogConfig(command, flagPath, flagLevel string, cfg *config.Config) (logConfig, error) {
	schema := config.DefaultSchema()
	var lc logConfig

	// Resolve log level: flag → config → "info".
	levelStr := flagLevel
	if levelStr == "" || levelStr == "info" {
		if v := schema.ResolveCommand(cfg, command, config.KeyLogLevel); v != "" {
			levelStr = v
		}
	}
	switch strings.ToLower(levelStr) {
	case "debug":
		lc.level = slog.LevelDebug
	case "info", "":
		lc.level = slog.LevelInfo
	case "warn":
		lc.level = slog.LevelWarn
	case "error":
		lc.level = slog.LevelError
	default:
		return lc, fmt.Errorf("invalid log level: %s", levelStr)
	}

	// Resolve log path: flag → config → "".
	logPath := flagPath
	if logPath == "" {
		logPath = schema.ResolveCommand(cfg, command, config.KeyLogFile)
	}

	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return lc, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return lc, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		lc.logFile = f
	}

	return lc, nil
}

// logger builds the logger for the resolved configuration: JSON lines when
// logging to a file, text on stderr otherwise.
func (lc logConfig) logger(stderr io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.level}
	if lc.logFile != nil {
		return slog.New(slog.NewJSONHandler(lc.logFile, opts))
	}
	return slog.New(slog.NewTextHandler(stderr, opts))
}

// close releases the log file, if any.
func (lc logConfig) close() {
	if lc.logFile != nil {
		_ = lc.logFile.Close()
	}
}
