package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
)

func TestLoad_Defaults(t *testing.T) {
	// GIVEN: no file and no environment
	// WHEN: loading
	// THEN: the built-in defaults apply

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "attendance.db", cfg.DBPath)
	assert.Equal(t, 15, cfg.RoundingGranularity)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Greater(t, cfg.WorkerCount, 0)
}

func TestLoad_EnvOverrides(t *testing.T) {
	// GIVEN: ATTEND_ environment variables
	// WHEN: loading
	// THEN: they win over the defaults

	t.Setenv("ATTEND_ADDR", ":9090")
	t.Setenv("ATTEND_DB_PATH", ":memory:")
	t.Setenv("ATTEND_ROUNDING_GRANULARITY", "5")
	t.Setenv("ATTEND_LOG_LEVEL", "debug")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, 5, cfg.RoundingGranularity)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	// GIVEN: a YAML file setting the address and an env var overriding it
	// WHEN: loading
	// THEN: env beats file beats defaults

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7000\"\nworker_count: 3\n"), 0o644))
	t.Setenv("ATTEND_CONFIG", path)
	t.Setenv("ATTEND_ADDR", ":7001")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Addr, "env wins")
	assert.Equal(t, 3, cfg.WorkerCount, "file wins over default")
}

func TestLoad_RejectsBadGranularity(t *testing.T) {
	t.Setenv("ATTEND_ROUNDING_GRANULARITY", "7")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Setenv("ATTEND_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestRounding_Conversion(t *testing.T) {
	cfg := New()
	cfg.RoundingGranularity = 10
	assert.Equal(t, engine.RoundingConfig{Granularity: 10}, cfg.Rounding())
}
