package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juju/clock"
	"github.com/sourcegraph/conc"

	"github.com/five82/ams/internal/api"
	"github.com/five82/ams/internal/config"
	"github.com/five82/ams/internal/live"
	"github.com/five82/ams/internal/localcache"
	"github.com/five82/ams/internal/pages"
	"github.com/five82/ams/internal/prefs"
	"github.com/five82/ams/internal/telemetry"
	"github.com/five82/ams/internal/ui"
)

// Options configure the console.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/ams/prefs.toml
	LogLevel   string
	// APIBaseURL overrides every other source of the base URL when set.
	APIBaseURL string
}

// Run boots the console until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	level, err := ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIBaseURL != "" {
		cfg.APIBaseURL = opts.APIBaseURL
	}

	logger, closeLog, err := newLogger(cfg.LogFile, level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	client, err := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	logger.Info("console starting", "component", "app", "api", client.BaseURL(), "config", opts.ConfigPath)

	toasts := ui.NewToasts()
	if err := preflight(ctx, client, clock.WallClock, preflightBudget, logger); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("api preflight failed", "component", "app", "error", err)
		toasts.Error("API Unreachable", fmt.Sprintf("%s did not answer; pages will retry.", client.BaseURL()))
	}

	prefFile := prefs.NewFile(opts.PrefsPath)
	userPrefs := prefFile.Load()

	flag := live.NewFlag(userPrefs.LiveEnabled(), prefFile)
	nav := live.NewNavigation(clock.WallClock, cfg.NavigationWindow)
	defer nav.Stop()
	vis := live.NewVisibility()
	signals := live.NewSignals(flag, nav, vis)
	defer signals.Close()

	var wg conc.WaitGroup
	defer wg.Wait()
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	wg.Go(func() {
		err := prefFile.Watch(watchCtx, func(p prefs.Prefs) { flag.Sync(p.LiveEnabled()) })
		if err != nil {
			logger.Warn("prefs watch stopped", "component", "prefs", "error", err)
		}
	})

	metrics := telemetry.NewRecorder()
	defer func() { _ = metrics.Shutdown(context.WithoutCancel(ctx)) }()

	updates := make(chan struct{}, 1)
	env := &pages.Env{
		Client: client,
		Gate:   signals,
		Clock:  clock.WallClock,
		Intervals: pages.Intervals{
			Poll:    cfg.PollInterval,
			Lookup:  cfg.LookupInterval,
			Stats:   cfg.StatsInterval,
			Initial: cfg.InitialDelay,
		},
		Workers: cfg.BulkDeleteWorkers,
		Notify:  toasts,
		Metrics: metrics.Metrics,
		Logger:  logger,
		Cache:   localcache.New(cfg.LegacyCachePath()),
		Changed: func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	}
	all, err := pages.All(env)
	if err != nil {
		return err
	}

	err = ui.Run(ui.Options{
		Context:    ctx,
		Pages:      all,
		Updates:    updates,
		Toasts:     toasts,
		Flag:       flag,
		Navigation: nav,
		Visibility: vis,
		Prefs:      prefFile,
		ThemeName:  userPrefs.Theme,
		Logger:     logger,
		LogFile:    cfg.LogFile,
		Activity:   func() string { return activity(ctx, metrics, logger) },
	})
	logger.Info("console stopped", "component", "app", "activity", activity(ctx, metrics, logger), "error", err)
	return err
}

// activity renders the recorder's counters, or "" when collection fails.
func activity(ctx context.Context, rec *telemetry.Recorder, logger *slog.Logger) string {
	counts, err := rec.Counts(context.WithoutCancel(ctx))
	if err != nil {
		logger.Debug("collect metrics failed", "component", "app", "error", err)
		return ""
	}
	return counts.String()
}
