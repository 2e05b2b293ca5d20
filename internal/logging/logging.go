// Package logging configures the process-wide slog logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrInvalidLevel is returned by ParseLevel for unknown level names.
var ErrInvalidLevel = errors.New("invalid log level")

// configMu serializes Configure; it replaces slog's and log's defaults.
var configMu sync.Mutex

// Options configures logging.
type Options struct {
	// App is attached to every record as "app" when set.
	App string
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// Level is the minimum level emitted.
	Level slog.Level
	// LegacyLevel is the level records from the standard log package get.
	LegacyLevel slog.Level
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Configure installs a logger built from opts as slog's default, redirects
// the standard log package into it and returns it.
func Configure(opts Options) *slog.Logger {
	configMu.Lock()
	defer configMu.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}
	if opts.App != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("app", opts.App)})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Third-party packages may still use the log package.
	def := log.Default()
	*def = *slog.NewLogLogger(handler, opts.LegacyLevel)

	return logger
}

// ParseLevel maps debug, info, warn/warning and error to slog levels. An
// empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

// OpenFile opens path for appending, creating it and its directory.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
