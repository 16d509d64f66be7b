// Package config loads the optional fspec.toml tunables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Store      StoreConfig      `toml:"store"`
	Estimation EstimationConfig `toml:"estimation"`
}

type StoreConfig struct {
	// Dir is the tracker data directory, relative to the workspace
	// root unless absolute.
	Dir           string `toml:"dir"`
	LockRetries   int    `toml:"lock_retries"`
	LockBackoffMS int    `toml:"lock_backoff_ms"`
}

type EstimationConfig struct {
	TokensPerPoint         int `toml:"tokens_per_point"`
	GuideConfidenceSamples int `toml:"guide_confidence_samples"`
}

func Default() Config {
	return Config{
		Store: StoreConfig{
			Dir:           ".fspec",
			LockRetries:   50,
			LockBackoffMS: 100,
		},
		Estimation: EstimationConfig{
			TokensPerPoint:         25000,
			GuideConfidenceSamples: 3,
		},
	}
}

// Load merges the file at path over defaults. A missing or empty file
// is not an error.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Store.Dir) == "" {
		return errors.New("store.dir is required")
	}
	if c.Store.LockRetries < 1 {
		return fmt.Errorf("store.lock_retries must be >= 1, got %d", c.Store.LockRetries)
	}
	if c.Store.LockBackoffMS < 0 {
		return fmt.Errorf("store.lock_backoff_ms must be >= 0, got %d", c.Store.LockBackoffMS)
	}
	if c.Estimation.TokensPerPoint < 1 {
		return fmt.Errorf("estimation.tokens_per_point must be >= 1, got %d", c.Estimation.TokensPerPoint)
	}
	if c.Estimation.GuideConfidenceSamples < 1 {
		return fmt.Errorf("estimation.guide_confidence_samples must be >= 1, got %d", c.Estimation.GuideConfidenceSamples)
	}
	return nil
}
