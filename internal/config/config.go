// Package config loads command-it settings from a YAML file, with
// COMMANDIT_* environment variables layered on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Cache   CacheConfig   `yaml:"cache"`
	Pool    PoolConfig    `yaml:"pool"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Lexicon LexiconConfig `yaml:"lexicon"`
}

type EngineConfig struct {
	Threshold     float64 `yaml:"threshold"`
	Margin        float64 `yaml:"margin"`
	MaxSynonyms   int     `yaml:"max_synonyms"`
	SynonymSenses int     `yaml:"synonym_senses"`
	TopK          int     `yaml:"top_k"`
	Suggestions   int     `yaml:"suggestions"`
	SpellCorrect  bool    `yaml:"spell_correct"`
	// NLP backs the lexicon with prose tagging and golem lemmas for words it
	// does not know.
	NLP bool `yaml:"nlp"`
}

type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

type PoolConfig struct {
	// Workers <= 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

type StoreConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr,omitempty"`
	RedisDB   int           `yaml:"redis_db,omitempty"`
	TTL       time.Duration `yaml:"ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type LexiconConfig struct {
	// Path replaces the embedded lexicon when set.
	Path string `yaml:"path,omitempty"`
}

func Default() Config {
	return Config{
		Engine: EngineConfig{
			Threshold:     0.35,
			Margin:        0.02,
			MaxSynonyms:   6,
			SynonymSenses: 2,
			TopK:          3,
			Suggestions:   3,
			SpellCorrect:  true,
			NLP:           true,
		},
		Cache:   CacheConfig{Size: 128, TTL: 30 * time.Minute},
		Store:   StoreConfig{Backend: BackendMemory, RedisAddr: "localhost:6379", TTL: 10 * time.Minute},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Path returns the default config file location under the user config dir.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", errors.New("config directory not found")
	}
	return filepath.Join(dir, "command-it", "config.yaml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically with owner-only permissions.
func Save(path string, cfg Config) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	cleanup = false
	return nil
}

// ApplyEnv overrides fields from COMMANDIT_* variables. lookup is normally
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(name string, dst *float64) {
		if v, ok := lookup(name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = f
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}

	num("COMMANDIT_THRESHOLD", &c.Engine.Threshold)
	num("COMMANDIT_MARGIN", &c.Engine.Margin)
	integer("COMMANDIT_TOP_K", &c.Engine.TopK)
	boolean("COMMANDIT_SPELL_CORRECT", &c.Engine.SpellCorrect)
	boolean("COMMANDIT_NLP", &c.Engine.NLP)
	integer("COMMANDIT_CACHE_SIZE", &c.Cache.Size)
	duration("COMMANDIT_CACHE_TTL", &c.Cache.TTL)
	integer("COMMANDIT_WORKERS", &c.Pool.Workers)
	str("COMMANDIT_STORE", &c.Store.Backend)
	str("COMMANDIT_REDIS_ADDR", &c.Store.RedisAddr)
	duration("COMMANDIT_STORE_TTL", &c.Store.TTL)
	str("COMMANDIT_LOG_LEVEL", &c.Logging.Level)
	boolean("COMMANDIT_LOG_PRETTY", &c.Logging.Pretty)
	str("COMMANDIT_LEXICON", &c.Lexicon.Path)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Engine.Threshold < 0 || c.Engine.Threshold > 1 {
		errs = append(errs, fmt.Errorf("engine.threshold %v outside [0,1]", c.Engine.Threshold))
	}
	if c.Engine.Margin < 0 || c.Engine.Margin > 1 {
		errs = append(errs, fmt.Errorf("engine.margin %v outside [0,1]", c.Engine.Margin))
	}
	if c.Engine.MaxSynonyms < 0 {
		errs = append(errs, errors.New("engine.max_synonyms is negative"))
	}
	if c.Engine.SynonymSenses < 0 {
		errs = append(errs, errors.New("engine.synonym_senses is negative"))
	}
	if c.Engine.TopK < 1 {
		errs = append(errs, errors.New("engine.top_k must be at least 1"))
	}
	if c.Cache.Size < 1 {
		errs = append(errs, errors.New("cache.size must be at least 1"))
	}
	if c.Cache.TTL < 0 || c.Store.TTL < 0 {
		errs = append(errs, errors.New("ttl is negative"))
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not memory or redis", c.Store.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
