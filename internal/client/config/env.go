package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by parseEnv.
const (
	envServerURL      = "RICEBOOK_SERVER_URL"
	envSuggestURL     = "RICEBOOK_SUGGEST_URL"
	envDatabasePath   = "RICEBOOK_DB_PATH"
	envRequestTimeout = "RICEBOOK_REQUEST_TIMEOUT"
)

// parseEnv overlays Config with values from the environment. A .env file
// in the working directory is loaded first when present; a missing file
// is not an error. Malformed durations are ignored rather than fatal.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(envServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(envSuggestURL); v != "" {
		cfg.SuggestURL = v
	}
	if v := os.Getenv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
}
