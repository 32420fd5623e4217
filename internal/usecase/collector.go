// Package usecase contains the business logic of the pipeline.
package usecase

import (
	"context"
	"log/slog"

	"github.com/repoviz/repoviz/internal/domain"
	"github.com/repoviz/repoviz/internal/gateway"
)

// RawWriter persists the fetched repository sequence.
type RawWriter interface {
	WriteRaw(path string, repos []domain.Repository) error
}

// Collector is the use case for the fetch stage. It pulls the ordered
// repository sequence from the gateway and persists it in one write,
// after the full sequence is collected.
type Collector struct {
	fetcher gateway.Fetcher
	store   RawWriter
	logger  *slog.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, store RawWriter, logger *slog.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// Run fetches repositories and writes the raw data file. It returns the
// number of records written. An empty result is not an error, but no
// file is written for it.
func (c *Collector) Run(ctx context.Context, minStars, pageSize, maxPages int, outputPath string) (int, error) {
	c.logger.Info("starting fetch", "min_stars", minStars, "page_size", pageSize, "max_pages", maxPages)

	repos, err := c.fetcher.FetchRepositories(ctx, minStars, pageSize, maxPages)
	if err != nil {
		return 0, err
	}

	if len(repos) == 0 {
		c.logger.Warn("no data fetched")
		return 0, nil
	}

	if err := c.store.WriteRaw(outputPath, repos); err != nil {
		return 0, err
	}

	c.logger.Info("fetch complete", "count", len(repos), "path", outputPath)

	return len(repos), nil
}
