package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvLegacyAPIBaseURL, "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Fatalf("PollInterval = %v, want 15s", cfg.PollInterval)
	}
	if cfg.InitialDelay != 80*time.Millisecond {
		t.Fatalf("InitialDelay = %v, want 80ms", cfg.InitialDelay)
	}
	if cfg.NavigationWindow != 600*time.Millisecond {
		t.Fatalf("NavigationWindow = %v, want 600ms", cfg.NavigationWindow)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if !strings.HasPrefix(cfg.LegacyCachePath(), home) {
		t.Fatalf("LegacyCachePath = %q, want it under HOME %q", cfg.LegacyCachePath(), home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvLegacyAPIBaseURL, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base_url = "  http://10.0.0.5:9000  "
log_file = "  ~/logs/ams.log  "
poll_interval = "5s"
lookup_interval = "1m"
initial_delay = "50ms"
navigation_window = "700ms"
requests_per_second = 4.5
bulk_delete_workers = 3
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://10.0.0.5:9000" {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "http://10.0.0.5:9000")
	}
	if cfg.LogFile != filepath.Join(home, "logs", "ams.log") {
		t.Fatalf("LogFile = %q, want it under HOME", cfg.LogFile)
	}
	if cfg.PollInterval != 5*time.Second || cfg.LookupInterval != time.Minute {
		t.Fatalf("intervals = %v/%v, want 5s/1m", cfg.PollInterval, cfg.LookupInterval)
	}
	if cfg.InitialDelay != 50*time.Millisecond || cfg.NavigationWindow != 700*time.Millisecond {
		t.Fatalf("delays = %v/%v, want 50ms/700ms", cfg.InitialDelay, cfg.NavigationWindow)
	}
	if cfg.StatsInterval != defaultStatsInterval {
		t.Fatalf("StatsInterval = %v, want default %v", cfg.StatsInterval, defaultStatsInterval)
	}
	if cfg.RequestsPerSecond != 4.5 || cfg.BulkDeleteWorkers != 3 {
		t.Fatalf("limits = %v/%d, want 4.5/3", cfg.RequestsPerSecond, cfg.BulkDeleteWorkers)
	}
}

func TestLoad_EnvOverridesBaseURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_base_url = "http://file:1"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvLegacyAPIBaseURL, "http://legacy:2")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://legacy:2" {
		t.Fatalf("APIBaseURL = %q, want legacy env value", cfg.APIBaseURL)
	}

	t.Setenv(EnvAPIBaseURL, "http://primary:3")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://primary:3" {
		t.Fatalf("APIBaseURL = %q, want primary env value", cfg.APIBaseURL)
	}
}

func TestLoad_InvalidDurationFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`poll_interval = "soon"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "poll_interval") {
		t.Fatalf("Load error = %v, want poll_interval parse error", err)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_base_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
