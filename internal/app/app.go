package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/formstate/internal/client"
	"github.com/five82/formstate/internal/config"
	"github.com/five82/formstate/internal/form"
	"github.com/five82/formstate/internal/logging"
	"github.com/five82/formstate/internal/metrics"
	"github.com/five82/formstate/internal/prefs"
	"github.com/five82/formstate/internal/ui"
)

// ErrNoForm is returned when no definition path was given and none is
// remembered in preferences.
var ErrNoForm = errors.New("no form definition given")

// Options configure the formstate application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/formstate/prefs.toml
	FormPath   string // empty uses the last form from prefs

	// Submit sends the form once without starting the UI.
	Submit bool
	// Values are name=value overrides applied before a headless submit.
	Values []string
	// Logs prints the last Logs lines of the log file and exits.
	Logs int
	// Stdout receives headless results and log lines; nil uses os.Stdout.
	Stdout io.Writer
}

// Run boots formstate until the UI exits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	if opts.Logs > 0 {
		lines, err := logging.Tail(cfg.LogFile, opts.Logs)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	formPath := strings.TrimSpace(opts.FormPath)
	if formPath == "" {
		formPath = userPrefs.LastForm
	}
	if formPath == "" {
		return ErrNoForm
	}
	formPath, err = config.ExpandPath(formPath)
	if err != nil {
		return fmt.Errorf("resolve form path: %w", err)
	}

	def, err := config.LoadDefinition(formPath)
	if err != nil {
		return fmt.Errorf("load form %s: %w", formPath, err)
	}
	if formPath != userPrefs.LastForm {
		if err := prefs.Update(opts.PrefsPath, func(p *prefs.Prefs) { p.LastForm = formPath }); err != nil {
			logger.Warn("remember form failed", "path", formPath, "error", err)
		}
	}

	api, err := client.NewClient(cfg.BaseURL, client.Options{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	formOpts := []form.Option{
		form.WithName(formName(def, formPath)),
		form.WithRequester(api),
		form.WithLogger(logger),
	}
	if cfg.MetricsAddr != "" {
		provider := metrics.NewProvider(true)
		formOpts = append(formOpts, form.WithMetrics(provider))
		go func() {
			if err := provider.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	installAudit()

	f := form.New(def.Initial(), formOpts...)
	logger.Info("form loaded",
		"form", f.Name(),
		"path", formPath,
		"method", def.Method.String(),
		"action", def.Action,
		"base_url", api.BaseURL(),
	)

	if opts.Submit {
		return submitOnce(ctx, f, def, opts.Values, out)
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Form:       f,
		Definition: def,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Logger:     logger,
	})
}

// setupLogging sends logs to the configured file; the terminal belongs to
// the UI.
func setupLogging(cfg config.Config) (*slog.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	file, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Configure(logging.Options{
		App:         "formstate",
		JSON:        cfg.LogJSON,
		Level:       level,
		LegacyLevel: slog.LevelInfo,
		Output:      file,
	})
	return logger, func() { _ = file.Close() }, nil
}

func formName(def config.Definition, path string) string {
	if def.Title != "" {
		return def.Title
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
