// Package config loads OnlineHub settings from an optional YAML file with
// environment overrides. A .env file next to the process is honored when
// present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full settings tree.
type Config struct {
	Store    StoreConfig
	Playback PlaybackConfig
	Guard    GuardConfig
	Cache    CacheConfig
	Refresh  RefreshConfig
}

// StoreConfig configures the record-store client.
type StoreConfig struct {
	BaseURL        string
	Token          string
	RequestTimeout time.Duration
	MaxRetries     int
}

// PlaybackConfig configures the fallback engine.
type PlaybackConfig struct {
	StallTimeout time.Duration
}

// GuardConfig configures admission checks.
type GuardConfig struct {
	SimilarityThreshold float64
	ProbeTimeout        time.Duration
}

// CacheConfig configures the advisory local cache. An empty path disables
// caching.
type CacheConfig struct {
	Path string
}

// RefreshConfig configures the scheduled store reconcile. An empty spec
// disables it.
type RefreshConfig struct {
	Schedule string // cron spec, e.g. "@every 5m"
}

// fileConfig is the YAML shape; durations are strings ("20s") so the file
// stays readable.
type fileConfig struct {
	Store struct {
		BaseURL        string `yaml:"base_url"`
		Token          string `yaml:"token"`
		RequestTimeout string `yaml:"request_timeout"`
		MaxRetries     *int   `yaml:"max_retries"`
	} `yaml:"store"`
	Playback struct {
		StallTimeout string `yaml:"stall_timeout"`
	} `yaml:"playback"`
	Guard struct {
		SimilarityThreshold *float64 `yaml:"similarity_threshold"`
		ProbeTimeout        string   `yaml:"probe_timeout"`
	} `yaml:"guard"`
	Cache struct {
		Path string `yaml:"path"`
	} `yaml:"cache"`
	Refresh struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"refresh"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store: StoreConfig{
			RequestTimeout: 15 * time.Second,
			MaxRetries:     3,
		},
		Playback: PlaybackConfig{
			StallTimeout: 10 * time.Second,
		},
		Guard: GuardConfig{
			SimilarityThreshold: 0.85,
			ProbeTimeout:        5 * time.Second,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty; a missing file at an explicit path is an error), then
// environment variables.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if err := applyFile(&cfg, fc); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) error {
	if fc.Store.BaseURL != "" {
		cfg.Store.BaseURL = fc.Store.BaseURL
	}
	if fc.Store.Token != "" {
		cfg.Store.Token = fc.Store.Token
	}
	if fc.Store.MaxRetries != nil {
		cfg.Store.MaxRetries = *fc.Store.MaxRetries
	}
	if fc.Guard.SimilarityThreshold != nil {
		cfg.Guard.SimilarityThreshold = *fc.Guard.SimilarityThreshold
	}
	cfg.Cache.Path = firstNonEmpty(fc.Cache.Path, cfg.Cache.Path)
	cfg.Refresh.Schedule = firstNonEmpty(fc.Refresh.Schedule, cfg.Refresh.Schedule)

	for _, d := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{fc.Store.RequestTimeout, &cfg.Store.RequestTimeout, "store.request_timeout"},
		{fc.Playback.StallTimeout, &cfg.Playback.StallTimeout, "playback.stall_timeout"},
		{fc.Guard.ProbeTimeout, &cfg.Guard.ProbeTimeout, "guard.probe_timeout"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ONLINEHUB_STORE_URL"); v != "" {
		cfg.Store.BaseURL = v
	}
	if v := os.Getenv("ONLINEHUB_STORE_TOKEN"); v != "" {
		cfg.Store.Token = v
	}
	if v := os.Getenv("ONLINEHUB_STORE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Store.MaxRetries = n
		}
	}
	if v := os.Getenv("ONLINEHUB_STALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Playback.StallTimeout = d
		}
	}
	if v := os.Getenv("ONLINEHUB_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Guard.ProbeTimeout = d
		}
	}
	if v := os.Getenv("ONLINEHUB_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("ONLINEHUB_REFRESH_SCHEDULE"); v != "" {
		cfg.Refresh.Schedule = v
	}
}
