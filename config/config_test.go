package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Playback.StallTimeout != 10*time.Second {
		t.Errorf("stall timeout = %v, want 10s", cfg.Playback.StallTimeout)
	}
	if cfg.Guard.ProbeTimeout != 5*time.Second {
		t.Errorf("probe timeout = %v, want 5s", cfg.Guard.ProbeTimeout)
	}
	if cfg.Guard.SimilarityThreshold != 0.85 {
		t.Errorf("similarity threshold = %v, want 0.85", cfg.Guard.SimilarityThreshold)
	}
	if cfg.Store.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", cfg.Store.MaxRetries)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onlinehub.yaml")
	data := `
store:
  base_url: https://records.example.com/v1/videos
  token: secret
  max_retries: 5
playback:
  stall_timeout: 20s
cache:
  path: /tmp/onlinehub.db
refresh:
  schedule: "@every 10m"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.BaseURL != "https://records.example.com/v1/videos" {
		t.Errorf("base url = %q", cfg.Store.BaseURL)
	}
	if cfg.Store.MaxRetries != 5 {
		t.Errorf("max retries = %d", cfg.Store.MaxRetries)
	}
	if cfg.Playback.StallTimeout != 20*time.Second {
		t.Errorf("stall timeout = %v", cfg.Playback.StallTimeout)
	}
	if cfg.Refresh.Schedule != "@every 10m" {
		t.Errorf("refresh schedule = %q", cfg.Refresh.Schedule)
	}
	// Unset values keep defaults.
	if cfg.Guard.ProbeTimeout != 5*time.Second {
		t.Errorf("probe timeout = %v, want default", cfg.Guard.ProbeTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onlinehub.yaml")
	if err := os.WriteFile(path, []byte("store:\n  token: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ONLINEHUB_STORE_TOKEN", "from-env")
	t.Setenv("ONLINEHUB_STALL_TIMEOUT", "2s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Token != "from-env" {
		t.Errorf("token = %q, want env to win", cfg.Store.Token)
	}
	if cfg.Playback.StallTimeout != 2*time.Second {
		t.Errorf("stall timeout = %v, want 2s", cfg.Playback.StallTimeout)
	}
}

func TestMissingExplicitFileIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit config file should be an error")
	}
}
