package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.35, cfg.Engine.Threshold)
	assert.Equal(t, 0.02, cfg.Engine.Margin)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.True(t, cfg.Engine.NLP)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  threshold: 0.5
store:
  backend: redis
  ttl: 2m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Engine.Threshold)
	assert.Equal(t, 0.02, cfg.Engine.Margin)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Store.TTL)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [oops"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Engine.TopK = 5
	cfg.Pool.Workers = 4
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"COMMANDIT_THRESHOLD":     "0.6",
		"COMMANDIT_WORKERS":       "3",
		"COMMANDIT_STORE":         " redis ",
		"COMMANDIT_STORE_TTL":     "90s",
		"COMMANDIT_SPELL_CORRECT": "false",
		"COMMANDIT_NLP":           "0",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 0.6, cfg.Engine.Threshold)
	assert.Equal(t, 3, cfg.Pool.Workers)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 90*time.Second, cfg.Store.TTL)
	assert.False(t, cfg.Engine.SpellCorrect)
	assert.False(t, cfg.Engine.NLP)
}

func TestApplyEnvCollectsErrors(t *testing.T) {
	env := map[string]string{
		"COMMANDIT_THRESHOLD": "high",
		"COMMANDIT_CACHE_TTL": "soon",
	}
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "COMMANDIT_THRESHOLD")
	assert.ErrorContains(t, err, "COMMANDIT_CACHE_TTL")
	assert.Equal(t, Default().Engine.Threshold, cfg.Engine.Threshold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"threshold", func(c *Config) { c.Engine.Threshold = 1.5 }, "engine.threshold"},
		{"margin", func(c *Config) { c.Engine.Margin = -0.1 }, "engine.margin"},
		{"top k", func(c *Config) { c.Engine.TopK = 0 }, "top_k"},
		{"cache size", func(c *Config) { c.Cache.Size = 0 }, "cache.size"},
		{"ttl", func(c *Config) { c.Store.TTL = -time.Second }, "ttl is negative"},
		{"backend", func(c *Config) { c.Store.Backend = "etcd" }, `"etcd"`},
		{"redis addr", func(c *Config) {
			c.Store.Backend = BackendRedis
			c.Store.RedisAddr = ""
		}, "redis_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
