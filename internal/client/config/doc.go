// Package config loads runtime configuration for the CodeCampus CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-g string   Google OAuth client ID
//	-p int      loopback port for the OAuth callback
//	-d string   SQLite DSN of the local session store
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "15s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.codecampus.example/api",
//	  "google_client_id": "1234.apps.googleusercontent.com",
//	  "redirect_port": 7777,
//	  "session_ttl": "168h",
//	  "request_timeout": "15s",
//	  "database_dsn": "campus.db",
//	  "log_level": "info"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the CLI
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
