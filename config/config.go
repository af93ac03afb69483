// Package config defines process configuration and its loading.
//
// Conventions:
//   - New() builds a Config with defaults; Load() layers a YAML file and
//     ATTEND_-prefixed environment variables on top.
//   - The rounding granularity is validated here so a misconfigured process
//     fails at startup instead of mid-batch.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database path; ":memory:" for in-memory.
	DBPath string `koanf:"db_path"`

	// WorkerCount sets the number of batch day-unit workers.
	WorkerCount int `koanf:"worker_count"`

	// RoundingGranularity is the payroll rounding step in minutes.
	// Must be one of 1, 5, 10 or 15.
	RoundingGranularity int `koanf:"rounding_granularity"`

	// MetricsEnabled exposes /metrics when true.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		DBPath:              "attendance.db",
		WorkerCount:         runtime.NumCPU(),
		RoundingGranularity: 15,
		MetricsEnabled:      true,
	}
}
