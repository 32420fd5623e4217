// Package config provides configuration for the fetch and process
// commands. Settings come from an optional YAML file; the API token
// comes from the environment only.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingToken         = errors.New("GITHUB_TOKEN environment variable is not set")
	ErrInvalidMinStars      = errors.New("min_stars must be non-negative")
	ErrInvalidPageSize      = errors.New("page_size must be between 1 and 100")
	ErrInvalidMaxPages      = errors.New("max_pages must be at least 1")
	ErrMissingRawPath       = errors.New("raw_path is required")
	ErrMissingProcessedPath = errors.New("processed_path is required")
	ErrInvalidRetries       = errors.New("retry.attempts must be non-negative")
	ErrInvalidBackoff       = errors.New("retry.backoff_ms must be non-negative")
	ErrInvalidLogLevel      = errors.New("log_level must be one of: debug, info, warn, error")
)

// Config holds all settings for a pipeline run.
type Config struct {
	MinStars      int         `yaml:"min_stars"`
	PageSize      int         `yaml:"page_size"`
	MaxPages      int         `yaml:"max_pages"`
	RawPath       string      `yaml:"raw_path"`
	ProcessedPath string      `yaml:"processed_path"`
	Retry         RetryConfig `yaml:"retry"`
	LogLevel      string      `yaml:"log_level"`

	// Token is loaded from the environment, never from the file.
	Token string `yaml:"-"`
}

// RetryConfig defines retry behavior for transient request failures.
type RetryConfig struct {
	Attempts  int `yaml:"attempts"`
	BackoffMs int `yaml:"backoff_ms"`
}

// Backoff returns the delay between retry attempts.
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffMs) * time.Millisecond
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MinStars:      27500,
		PageSize:      100,
		MaxPages:      10,
		RawPath:       "data/raw/github_repos.csv",
		ProcessedPath: "data/processed/github_repos_processed.csv",
		Retry: RetryConfig{
			Attempts:  1,
			BackoffMs: 2000,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from a YAML file, merged over defaults.
// A missing file is not an error; the defaults apply as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadToken reads the API token from the environment. A .env file in the
// working directory is loaded first if present. An empty token is a
// fatal configuration error, reported before any request is made.
func (c *Config) LoadToken() error {
	_ = godotenv.Load()

	c.Token = os.Getenv("GITHUB_TOKEN")
	if c.Token == "" {
		return ErrMissingToken
	}

	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MinStars < 0 {
		return ErrInvalidMinStars
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		return ErrInvalidPageSize
	}

	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	if c.RawPath == "" {
		return ErrMissingRawPath
	}

	if c.ProcessedPath == "" {
		return ErrMissingProcessedPath
	}

	if c.Retry.Attempts < 0 {
		return ErrInvalidRetries
	}

	if c.Retry.BackoffMs < 0 {
		return ErrInvalidBackoff
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	return nil
}
