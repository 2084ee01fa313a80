// Package config loads runtime configuration for the Ricebook client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables, optionally loaded from a .env file
//     (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the Ricebook backend
//	-s string   external address-suggestion endpoint URL
//	-d string   path of the local state database
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://ricebook.example.com",
//	  "suggest_url": "https://suggest.example.com/addresses",
//	  "database_path": "ricebook.db",
//	  "request_timeout": "30s"
//	}
package config
