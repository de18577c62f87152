package config

import "time"

// Config holds runtime settings for the CodeCampus CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - GoogleClientID: OAuth client ID used to build the consent URL.
//   - RedirectPort: loopback port for the OAuth callback (0 picks a free one).
//   - SessionTTL: lifetime of a persisted session.
//   - RequestTimeout: upper bound on a single backend round trip.
//   - DatabaseDSN: SQLite DSN for the local session store.
//   - LogLevel: debug, info, warn, or error.
type Config struct {
	APIBaseURL     string
	GoogleClientID string
	RedirectPort   int
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	DatabaseDSN    string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.GoogleClientID = ""
	c.RedirectPort = 0
	c.SessionTTL = 7 * 24 * time.Hour
	c.RequestTimeout = 15 * time.Second
	c.DatabaseDSN = "campus.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
