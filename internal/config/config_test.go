package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))

		require.NoError(t, err)
		assert.Equal(t, 27500, cfg.MinStars)
		assert.Equal(t, 100, cfg.PageSize)
		assert.Equal(t, 10, cfg.MaxPages)
		assert.Equal(t, "data/raw/github_repos.csv", cfg.RawPath)
		assert.Equal(t, "data/processed/github_repos_processed.csv", cfg.ProcessedPath)
		assert.Equal(t, 1, cfg.Retry.Attempts)
	})

	t.Run("file values merge over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
min_stars: 50000
max_pages: 3
retry:
  attempts: 2
  backoff_ms: 500
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 50000, cfg.MinStars)
		assert.Equal(t, 3, cfg.MaxPages)
		assert.Equal(t, 2, cfg.Retry.Attempts)
		assert.Equal(t, 500, cfg.Retry.BackoffMs)
		// Untouched settings keep their defaults.
		assert.Equal(t, 100, cfg.PageSize)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_stars: [broken"), 0o644))

		_, err := Load(path)

		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(c *Config)
		expectedErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:        "negative min stars",
			mutate:      func(c *Config) { c.MinStars = -1 },
			expectedErr: ErrInvalidMinStars,
		},
		{
			name:        "page size above API cap",
			mutate:      func(c *Config) { c.PageSize = 101 },
			expectedErr: ErrInvalidPageSize,
		},
		{
			name:        "zero page size",
			mutate:      func(c *Config) { c.PageSize = 0 },
			expectedErr: ErrInvalidPageSize,
		},
		{
			name:        "zero max pages",
			mutate:      func(c *Config) { c.MaxPages = 0 },
			expectedErr: ErrInvalidMaxPages,
		},
		{
			name:        "missing raw path",
			mutate:      func(c *Config) { c.RawPath = "" },
			expectedErr: ErrMissingRawPath,
		},
		{
			name:        "missing processed path",
			mutate:      func(c *Config) { c.ProcessedPath = "" },
			expectedErr: ErrMissingProcessedPath,
		},
		{
			name:        "negative retry attempts",
			mutate:      func(c *Config) { c.Retry.Attempts = -1 },
			expectedErr: ErrInvalidRetries,
		},
		{
			name:        "negative backoff",
			mutate:      func(c *Config) { c.Retry.BackoffMs = -1 },
			expectedErr: ErrInvalidBackoff,
		},
		{
			name:        "bogus log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			expectedErr: ErrInvalidLogLevel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoadToken(t *testing.T) {
	t.Run("token present in environment", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "fake-token")

		cfg := Default()

		require.NoError(t, cfg.LoadToken())
		assert.Equal(t, "fake-token", cfg.Token)
	})

	t.Run("missing token is a fatal configuration error", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")

		cfg := Default()

		assert.ErrorIs(t, cfg.LoadToken(), ErrMissingToken)
	})
}
