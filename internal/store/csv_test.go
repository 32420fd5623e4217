package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoviz/repoviz/internal/domain"
)

func newTestStore() *CSVStore {
	return NewCSVStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleRaw() []domain.Repository {
	return []domain.Repository{
		{
			ID:        1,
			FullName:  "org/repo-a",
			Owner:     "org",
			Stars:     40000,
			Forks:     900,
			Language:  "Go",
			CreatedAt: "2020-01-01T00:00:00Z",
			PushedAt:  "2024-06-01T00:00:00Z",
			License:   "MIT",
			URL:       "https://github.com/org/repo-a",
		},
		{
			ID:        2,
			FullName:  "org/repo-b",
			Owner:     "org",
			Stars:     30000,
			Forks:     400,
			Language:  "",
			CreatedAt: "2021-01-01T00:00:00Z",
			PushedAt:  "2024-05-01T00:00:00Z",
			License:   "",
			URL:       "https://github.com/org/repo-b",
		},
	}
}

func TestCSVStore_RawRoundTrip(t *testing.T) {
	store := newTestStore()
	path := filepath.Join(t.TempDir(), "raw", "github_repos.csv")

	require.NoError(t, store.WriteRaw(path, sampleRaw()))

	loaded, err := store.ReadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRaw(), loaded)
}

func TestCSVStore_WriteRawOverwrites(t *testing.T) {
	store := newTestStore()
	path := filepath.Join(t.TempDir(), "github_repos.csv")

	require.NoError(t, store.WriteRaw(path, sampleRaw()))
	require.NoError(t, store.WriteRaw(path, sampleRaw()[:1]))

	loaded, err := store.ReadRaw(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)

	// The temp file used for the atomic write must not linger.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSVStore_ReadRawMissingFile(t *testing.T) {
	store := newTestStore()

	_, err := store.ReadRaw(filepath.Join(t.TempDir(), "does-not-exist.csv"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open raw data file")
}

func TestCSVStore_ReadRawCoercesBadNumbers(t *testing.T) {
	store := newTestStore()
	path := filepath.Join(t.TempDir(), "github_repos.csv")

	content := "id,full_name,owner,stars,forks,language,created_at,pushed_at,license,url\n" +
		"not-a-number,org/repo-a,org,oops,12,Go,2020-01-01T00:00:00Z,2024-06-01T00:00:00Z,MIT,https://github.com/org/repo-a\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := store.ReadRaw(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	// Coerced values mark the record for exclusion during processing.
	assert.Equal(t, int64(0), loaded[0].ID)
	assert.Equal(t, -1, loaded[0].Stars)
	assert.Equal(t, 12, loaded[0].Forks)
}

func TestCSVStore_WriteProcessedIsByteIdentical(t *testing.T) {
	store := newTestStore()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	processed := []domain.ProcessedRepository{
		{
			ID:            1,
			FullName:      "org/repo-a",
			Owner:         "org",
			Stars:         40000,
			Forks:         900,
			Language:      "Go",
			LanguageKnown: true,
			CreatedAt:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			PushedAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			License:       "MIT",
			URL:           "https://github.com/org/repo-a",

			AgeDays:                   1827,
			AgeYears:                  5.0055,
			DaysSinceLastPush:         214,
			IsActive:                  false,
			StarsPerYear:              7991.2,
			ForksPerYear:              179.8,
			PopularityScore:           41800,
			PopularityScoreNormalized: 100,
			EngagementRate:            8171.0,
			StarToForkRatio:           44.4444,
			Category:                  domain.CategoryModerate,
		},
	}

	require.NoError(t, store.WriteProcessed(first, processed))
	require.NoError(t, store.WriteProcessed(second, processed))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Contains(t, string(a), "popularity_score_normalized")
	assert.Contains(t, string(a), "100.0000")
}
