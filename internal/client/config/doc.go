// Package config loads runtime configuration for the NoteHub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. NOTEHUB_* variables from a .env file in the working directory and from
//     the process environment (the process wins).
//  3. Optional config file selected with --config / -c. Files ending in
//     .yaml or .yml are YAML, anything else is JSON.
//  4. Command-line flags the user actually set.
//
// Supported flags
//
//	-a, --api string         base URL of the NoteHub API
//	-i, --interval int       online status check interval (seconds)
//	    --timeout duration   per-request timeout
//	    --db string          path to the local SQLite database
//	    --log-level string   debug | info | warn | error
//	    --metrics-addr       address for /metrics (disabled when empty)
//
// # File schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.notehub.example",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "db_path": "notehub.db",
//	  "log_level": "info"
//	}
package config
