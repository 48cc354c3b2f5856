// Package models defines data structures for configuration, raw API
// documents, and normalized records.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for a pipeline run. Values come
// from an optional YAML file with CLI flags taking precedence.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	DBPath         string
}

// fileConfig mirrors the YAML layout. Durations are strings in
// time.ParseDuration format (e.g. "10s", "500ms").
type fileConfig struct {
	BaseURL        string `yaml:"base_url"`
	RequestTimeout string `yaml:"request_timeout"`
	MaxRetries     *int   `yaml:"max_retries"`
	RetryBaseDelay string `yaml:"retry_base_delay"`
	RetryMaxDelay  string `yaml:"retry_max_delay"`
	DBPath         string `yaml:"db_path"`
}

// DefaultConfig returns the built-in defaults used when no config file
// is present.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://pokeapi.co/api/v2",
		RequestTimeout: 10 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  8 * time.Second,
		DBPath:         "pokepipeline.db",
	}
}

// LoadConfig reads a YAML config file and merges it over the defaults.
// An empty path means no file was requested and defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}

	durations := []struct {
		raw  string
		key  string
		dest *time.Duration
	}{
		{fc.RequestTimeout, "request_timeout", &cfg.RequestTimeout},
		{fc.RetryBaseDelay, "retry_base_delay", &cfg.RetryBaseDelay},
		{fc.RetryMaxDelay, "retry_max_delay", &cfg.RetryMaxDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s duration %q: %w", d.key, d.raw, err)
		}
		*d.dest = parsed
	}

	return cfg, nil
}
