package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/warp/attendance-engine/engine"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ATTEND_CONFIG is set
//  3. env (prefix ATTEND_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ATTEND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: ATTEND_ADDR, ATTEND_WORKER_COUNT, ...
	// Map env keys like ATTEND_DB_PATH -> db_path (flat keys, underscores
	// preserved to match the koanf tags).
	envProvider := env.Provider("ATTEND_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "attend_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if err := cfg.Rounding().Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Rounding exposes the configured payroll rounding as the engine type.
func (c *Config) Rounding() engine.RoundingConfig {
	return engine.RoundingConfig{Granularity: c.RoundingGranularity}
}
