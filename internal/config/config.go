package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures console settings: where the API lives and how often to poll it.
type Config struct {
	APIBaseURL        string
	LogFile           string
	CacheDir          string
	PollInterval      time.Duration
	LookupInterval    time.Duration
	StatsInterval     time.Duration
	InitialDelay      time.Duration
	NavigationWindow  time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	BulkDeleteWorkers int
}

const (
	defaultConfigPath = "~/.config/ams/config.toml"
	defaultLogFile    = "~/.local/state/ams/ams.log"
	defaultCacheDir   = "~/.local/share/ams"
	defaultAPIBaseURL = "http://localhost:8000"

	defaultPollInterval      = 15 * time.Second
	defaultLookupInterval    = 60 * time.Second
	defaultStatsInterval     = 10 * time.Second
	defaultInitialDelay      = 80 * time.Millisecond
	defaultNavigationWindow  = 600 * time.Millisecond
	defaultRequestTimeout    = 10 * time.Second
	defaultBulkDeleteWorkers = 8
)

// Environment variables consulted for the API base URL, highest precedence first.
const (
	EnvAPIBaseURL       = "AMS_API_BASE_URL"
	EnvLegacyAPIBaseURL = "NEXT_PUBLIC_API_BASE_URL"
)

type rawConfig struct {
	APIBaseURL        string  `toml:"api_base_url"`
	LogFile           string  `toml:"log_file"`
	CacheDir          string  `toml:"cache_dir"`
	PollInterval      string  `toml:"poll_interval"`
	LookupInterval    string  `toml:"lookup_interval"`
	StatsInterval     string  `toml:"stats_interval"`
	InitialDelay      string  `toml:"initial_delay"`
	NavigationWindow  string  `toml:"navigation_window"`
	RequestTimeout    string  `toml:"request_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BulkDeleteWorkers int     `toml:"bulk_delete_workers"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:        defaultAPIBaseURL,
		LogFile:           mustExpand(defaultLogFile),
		CacheDir:          mustExpand(defaultCacheDir),
		PollInterval:      defaultPollInterval,
		LookupInterval:    defaultLookupInterval,
		StatsInterval:     defaultStatsInterval,
		InitialDelay:      defaultInitialDelay,
		NavigationWindow:  defaultNavigationWindow,
		RequestTimeout:    defaultRequestTimeout,
		BulkDeleteWorkers: defaultBulkDeleteWorkers,
	}
}

// Load locates and parses the console config, falling back to defaults when
// missing. The API base URL environment variables always win over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.CacheDir); v != "" {
		cfg.CacheDir = mustExpand(v)
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"lookup_interval", raw.LookupInterval, &cfg.LookupInterval},
		{"stats_interval", raw.StatsInterval, &cfg.StatsInterval},
		{"initial_delay", raw.InitialDelay, &cfg.InitialDelay},
		{"navigation_window", raw.NavigationWindow, &cfg.NavigationWindow},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.value, d.dest); err != nil {
			return Config{}, err
		}
	}

	if raw.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = raw.RequestsPerSecond
	}
	if raw.BulkDeleteWorkers > 0 {
		cfg.BulkDeleteWorkers = raw.BulkDeleteWorkers
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LegacyCachePath returns the location of the maintenance records cache.
func (c Config) LegacyCachePath() string {
	dir := strings.TrimSpace(c.CacheDir)
	if dir == "" {
		dir = mustExpand(defaultCacheDir)
	}
	return filepath.Join(dir, "maintenance.json")
}

func applyEnv(cfg *Config) {
	for _, key := range []string{EnvAPIBaseURL, EnvLegacyAPIBaseURL} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.APIBaseURL = v
			return
		}
	}
}

func parseDuration(key, value string, dest *time.Duration) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive, got %s", key, value)
	}
	*dest = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
