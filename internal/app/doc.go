// Package app is the composition root of the asset-management console.
//
// # Overview
//
// This package wires configuration, logging, the API client, the polling
// gates, the pages and the terminal UI into one running console. Business
// logic lives elsewhere: pages decide what to poll and how to render it,
// mutate owns optimistic edits, ui owns the screen. Run only builds those
// pieces, connects them and tears them down in reverse order.
//
// # Startup
//
// Run wires the console together in this order:
//
//  1. Parse the log level (an unknown level is an error)
//  2. Load ~/.config/ams/config.toml (missing file means defaults)
//  3. Open the rotating JSON log file; stdout belongs to the terminal UI
//  4. Build the API client with the configured timeout and rate limit
//  5. Preflight the API with exponential backoff
//  6. Restore the theme and Live Flag from the preferences file and watch it
//     for changes made by another session
//  7. Build the Navigation Window, Visibility and the combined polling gate
//  8. Create the metrics recorder every poller and coordinator records into
//  9. Build every page and hand them to the UI, which blocks until quit
//
// # Components
//
//   - app.go: Options, Run and the activity summary shown in the log overlay
//   - logging.go: ParseLevel and the lumberjack-backed slog JSON logger
//   - preflight.go: the startup reachability check
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ build everything, block in ui.Run
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()            TOML + env overrides
//	       ├─────> newLogger()              rotating JSON log
//	       ├─────> api.NewClient()          REST client
//	       ├─────> preflight()              backoff until the API answers
//	       ├─────> prefs.File.Watch()       fsnotify -> live.Flag.Sync
//	       ├─────> live.NewSignals()        Live Flag + navigation + focus
//	       ├─────> telemetry.NewRecorder()  SDK meter provider, manual reader
//	       ├─────> pages.All(env)           one Page per screen
//	       └─────> ui.Run()                 Bubble Tea program (blocks)
//
//	While running:
//
//	pages (pollers) ──Changed()──> updates chan (cap 1) ──> ui.Model re-render
//	mutations ──Notify──> ui.Toasts ──> toast stack
//	prefs file ──fsnotify──> live.Flag.Sync ──> pollers gate
//	pollers, coordinators ──> telemetry.Recorder ──> log overlay activity line
//
// The updates channel has capacity one and sends never block: several page
// changes between two frames collapse into a single re-render.
//
// # Preflight
//
// Before the UI starts, preflight GETs /api/ until the server answers or the
// three second budget is spent. Any HTTP response counts as reachable, an
// error status included, since it proves a server is listening. Waits start
// at 200ms and grow by half each attempt, capped at one second, with no
// jitter so the schedule is reproducible under a test clock.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Unknown log level
//   - Configuration file present but malformed or with invalid values
//   - Log directory that cannot be created
//   - API base URL that does not parse
//   - Page construction failure
//
// Recoverable errors (logged, the console keeps running):
//   - API unreachable at startup: an error toast, pages retry on schedule
//   - Preferences watcher stopping: the flag keeps its in-memory value
//   - Metrics collection failure: the activity line is left empty
//
// Cancelling ctx during preflight is a clean exit, not an error.
//
// # Shutdown
//
// When the UI returns, deferred calls unwind in reverse: the metrics
// provider is shut down (after the final activity summary is logged), the
// prefs watcher is cancelled and awaited, the combined gate and navigation
// timer are stopped, and the log file is closed last.
//
// # Usage Example
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	err := app.Run(ctx, app.Options{
//		ConfigPath: "",      // ~/.config/ams/config.toml
//		LogLevel:   "debug",
//		APIBaseURL: "http://localhost:8000/api/",
//	})
//	if err != nil {
//		fmt.Fprintln(os.Stderr, err)
//	}
//
// # Dependencies
//
//   - config, prefs: configuration and persisted user preferences
//   - api: HTTP client for the asset-management API
//   - live, poll, pages, mutate: polling gates, subscriptions and pages
//   - telemetry: instruments and the in-process recorder
//   - ui: the Bubble Tea console
package app
