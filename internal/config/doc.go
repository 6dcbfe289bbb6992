// Package config loads the concierge configuration file.
//
// # Configuration Discovery
//
// Load resolves settings in this order:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file at the given path, or $XDG_CONFIG_HOME/concierge/config.toml
//  3. CONCIERGE_BASE_URL, CONCIERGE_LOG_LEVEL, CONCIERGE_LOG_FORMAT and
//     CONCIERGE_POLL from the environment
//
// A missing file is not an error. Empty or blank values in the file keep the
// default. Paths accept a leading ~.
//
// # Default Values
//
//   - API base URL: http://127.0.0.1:8000
//   - Request timeout: 10s, poll interval: 30s
//   - Rate limit: 10 requests/s, burst 5
//   - Session: $XDG_STATE_HOME/concierge/session.toml
//   - Log file: $XDG_STATE_HOME/concierge/concierge.log
//   - Preferences: $XDG_CONFIG_HOME/concierge/prefs.toml
//
// # TOML Format
//
//	base_url = "https://api.example.com"
//	timeout = "15s"
//	poll_interval = "1m"
//	log_level = "debug"
//	log_format = "json"
//
//	[endpoints]
//	plans = "/api/v1/admin/subscription_plans/"
//
// Endpoint overrides replace single API paths; the rest keep their defaults.
//
// # Error Handling
//
// Load fails on unreadable files, TOML syntax errors, malformed durations and
// values Validate rejects (unknown log level or format, poll interval under a
// second).
package config
