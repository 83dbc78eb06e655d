// Package config loads the console configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/ams/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. AMS_API_BASE_URL, then NEXT_PUBLIC_API_BASE_URL, override api_base_url
//
// # TOML Format
//
//	api_base_url = "http://localhost:8000"
//	poll_interval = "15s"
//	lookup_interval = "60s"
//	stats_interval = "10s"
//	initial_delay = "80ms"
//	navigation_window = "600ms"
//	request_timeout = "10s"
//	requests_per_second = 0
//	bulk_delete_workers = 8
//	log_file = "~/.local/state/ams/ams.log"
//	cache_dir = "~/.local/share/ams"
//
// Durations use Go duration syntax and must be positive. A malformed file is
// an error; a missing file is not.
package config
