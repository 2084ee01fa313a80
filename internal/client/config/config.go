package config

import "time"

// Config holds runtime settings for the Ricebook client.
//
// Fields:
//   - ServerURL: base URL of the Ricebook backend.
//   - SuggestURL: external address-autocomplete endpoint (optional).
//   - DatabasePath: path of the local SQLite state database.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string
	SuggestURL     string
	DatabasePath   string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.SuggestURL = ""
	c.DatabasePath = "ricebook.db"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables (optionally loaded from a
// .env file), and command-line flags. Later sources take precedence over
// earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
