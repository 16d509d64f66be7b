package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Store.Dir != ".fspec" {
		t.Fatalf("unexpected store dir %q", cfg.Store.Dir)
	}
	if cfg.Estimation.TokensPerPoint != 25000 {
		t.Fatalf("unexpected tokens per point %d", cfg.Estimation.TokensPerPoint)
	}
	if cfg.Estimation.GuideConfidenceSamples != 3 {
		t.Fatalf("unexpected confidence samples %d", cfg.Estimation.GuideConfidenceSamples)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != defaults {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fspec.toml")
	content := `
[store]
lock_retries = 10

[estimation]
tokens_per_point = 40000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.LockRetries != 10 {
		t.Fatalf("unexpected lock retries %d", cfg.Store.LockRetries)
	}
	if cfg.Estimation.TokensPerPoint != 40000 {
		t.Fatalf("unexpected tokens per point %d", cfg.Estimation.TokensPerPoint)
	}
	// Untouched sections keep their defaults.
	if cfg.Store.Dir != ".fspec" {
		t.Fatalf("unexpected store dir %q", cfg.Store.Dir)
	}
	if cfg.Estimation.GuideConfidenceSamples != 3 {
		t.Fatalf("unexpected confidence samples %d", cfg.Estimation.GuideConfidenceSamples)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero tokens":    "[estimation]\ntokens_per_point = 0\n",
		"zero retries":   "[store]\nlock_retries = 0\n",
		"empty dir":      "[store]\ndir = \"  \"\n",
		"negative delay": "[store]\nlock_backoff_ms = -1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fspec.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default()); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
