// Package gateway provides a gateway to the GitHub search API,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/repoviz/repoviz/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching repository
// metadata from GitHub.
type Fetcher interface {
	FetchRepositories(ctx context.Context, minStars, pageSize, maxPages int) ([]domain.Repository, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// Pagination is strictly serial; the only suspension point is the
// backoff sleep between a failed page request and its retry.
type GitHubGateway struct {
	client  *github.Client
	retries int
	backoff time.Duration
	sleep   func(time.Duration)
	now     func() time.Time
	logger  *slog.Logger
}

// NewGitHubGateway creates a gateway authenticated with the given token.
// Secondary rate limits are absorbed by a waiting transport; primary
// rate limits are handled explicitly in the page loop so the retry
// policy stays configurable.
func NewGitHubGateway(token string, retries int, backoff time.Duration, logger *slog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	return &GitHubGateway{
		client:  github.NewClient(httpClient),
		retries: retries,
		backoff: backoff,
		sleep:   time.Sleep,
		now:     time.Now,
		logger:  logger,
	}, nil
}

// FetchRepositories fetches repositories above the star threshold,
// sorted by stars descending, page by page. It stops when the API
// reports no further pages, maxPages is reached, or a page request
// still fails after its retry budget.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, minStars, pageSize, maxPages int) ([]domain.Repository, error) {
	query := fmt.Sprintf("stars:>%d", minStars)
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	var repos []domain.Repository

	for page := 1; page <= maxPages; page++ {
		g.logger.Info("fetching page", "page", page)
		opts.Page = page

		result, resp, err := g.searchPage(ctx, query, opts)
		if err != nil {
			return nil, err
		}

		if len(result.Repositories) == 0 {
			g.logger.Info("no more data to fetch")
			break
		}

		for _, r := range result.Repositories {
			repos = append(repos, toRepository(r))
		}

		g.logger.Info("fetched repositories", "page", page, "count", len(result.Repositories))

		if resp.NextPage == 0 {
			break
		}
	}

	return repos, nil
}

// searchPage issues one search request, retrying up to the configured
// budget. A primary rate-limit response sleeps until the reset time
// reported by the API; any other failure sleeps the fixed backoff.
func (g *GitHubGateway) searchPage(ctx context.Context, query string, opts *github.SearchOptions) (*github.RepositoriesSearchResult, *github.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			g.waitBeforeRetry(opts.Page, lastErr)
		}

		result, resp, err := g.client.Search.Repositories(ctx, query, opts)
		if err == nil {
			return result, resp, nil
		}
		lastErr = err
	}

	return nil, nil, fmt.Errorf("failed to fetch page %d: %w", opts.Page, lastErr)
}

func (g *GitHubGateway) waitBeforeRetry(page int, err error) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := rateErr.Rate.Reset.Time.Sub(g.now())
		if wait < 0 {
			wait = 0
		}
		g.logger.Warn("rate limit exhausted, waiting for reset", "page", page, "wait", wait.String())
		g.sleep(wait)
		return
	}

	g.logger.Warn("request failed, retrying after backoff", "page", page, "backoff", g.backoff.String(), "error", err)
	g.sleep(g.backoff)
}

func toRepository(r *github.Repository) domain.Repository {
	return domain.Repository{
		ID:        r.GetID(),
		FullName:  r.GetFullName(),
		Owner:     r.GetOwner().GetLogin(),
		Stars:     r.GetStargazersCount(),
		Forks:     r.GetForksCount(),
		Language:  r.GetLanguage(),
		CreatedAt: r.GetCreatedAt().UTC().Format(time.RFC3339),
		PushedAt:  r.GetPushedAt().UTC().Format(time.RFC3339),
		License:   r.GetLicense().GetSPDXID(),
		URL:       r.GetHTMLURL(),
	}
}
