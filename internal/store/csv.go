// Package store persists pipeline data as delimited flat files.
package store

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/repoviz/repoviz/internal/domain"
)

var rawHeader = []string{
	"id", "full_name", "owner", "stars", "forks", "language",
	"created_at", "pushed_at", "license", "url",
}

var processedHeader = []string{
	"id", "full_name", "owner", "stars", "forks", "language", "language_known",
	"created_at", "pushed_at", "license", "url",
	"repo_age_days", "repo_age_years", "days_since_last_push", "is_active",
	"stars_per_year", "forks_per_year", "popularity_score",
	"popularity_score_normalized", "engagement_rate", "star_to_fork_ratio",
	"category",
}

// CSVStore reads and writes the raw and processed data files. Writes go
// through a temp file and rename, so a failed run never leaves a file
// with truncated rows.
type CSVStore struct {
	logger *slog.Logger
}

// NewCSVStore creates a new CSVStore instance.
func NewCSVStore(logger *slog.Logger) *CSVStore {
	return &CSVStore{logger: logger}
}

// WriteRaw writes the fetched repositories to path, overwriting any
// previous content.
func (s *CSVStore) WriteRaw(path string, repos []domain.Repository) error {
	return s.writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(rawHeader); err != nil {
			return err
		}
		for _, r := range repos {
			row := []string{
				strconv.FormatInt(r.ID, 10),
				r.FullName,
				r.Owner,
				strconv.Itoa(r.Stars),
				strconv.Itoa(r.Forks),
				r.Language,
				r.CreatedAt,
				r.PushedAt,
				r.License,
				r.URL,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadRaw loads the raw data file. Numeric cells that fail to parse are
// coerced to values the processor treats as missing (0 for the id, -1
// for counts) rather than aborting the whole run.
func (s *CSVStore) ReadRaw(path string) ([]domain.Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw data file %s: %w", path, err)
	}
	defer f.Close()

	s.logger.Info("loading raw data", "path", path)

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read raw data file %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	repos := make([]domain.Repository, 0, len(records)-1)
	for _, row := range records[1:] {
		repos = append(repos, domain.Repository{
			ID:        parseInt64(row[0]),
			FullName:  row[1],
			Owner:     row[2],
			Stars:     parseCount(row[3]),
			Forks:     parseCount(row[4]),
			Language:  row[5],
			CreatedAt: row[6],
			PushedAt:  row[7],
			License:   row[8],
			URL:       row[9],
		})
	}

	return repos, nil
}

// WriteProcessed writes the processed repositories to path, overwriting
// any previous content. Formatting is fixed-precision so identical input
// always produces byte-identical output.
func (s *CSVStore) WriteProcessed(path string, repos []domain.ProcessedRepository) error {
	return s.writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(processedHeader); err != nil {
			return err
		}
		for _, r := range repos {
			row := []string{
				strconv.FormatInt(r.ID, 10),
				r.FullName,
				r.Owner,
				strconv.Itoa(r.Stars),
				strconv.Itoa(r.Forks),
				r.Language,
				strconv.FormatBool(r.LanguageKnown),
				r.CreatedAt.UTC().Format(time.RFC3339),
				r.PushedAt.UTC().Format(time.RFC3339),
				r.License,
				r.URL,
				strconv.Itoa(r.AgeDays),
				formatFloat(r.AgeYears),
				strconv.Itoa(r.DaysSinceLastPush),
				strconv.FormatBool(r.IsActive),
				formatFloat(r.StarsPerYear),
				formatFloat(r.ForksPerYear),
				strconv.Itoa(r.PopularityScore),
				formatFloat(r.PopularityScoreNormalized),
				formatFloat(r.EngagementRate),
				formatFloat(r.StarToForkRatio),
				r.Category,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CSVStore) writeAtomic(path string, write func(w *csv.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	w := csv.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info("data saved", "path", path)

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCount(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}
