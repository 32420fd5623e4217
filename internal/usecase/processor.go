package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/repoviz/repoviz/internal/domain"
)

// Record exclusion reasons.
var (
	ErrMissingID        = errors.New("missing repository identifier")
	ErrMissingStars     = errors.New("missing star count")
	ErrInvalidCreatedAt = errors.New("invalid creation timestamp")
	ErrInvalidPushedAt  = errors.New("invalid push timestamp")
)

// ProcessedStore covers the file access the process stage needs.
type ProcessedStore interface {
	ReadRaw(path string) ([]domain.Repository, error)
	WriteProcessed(path string, repos []domain.ProcessedRepository) error
}

// Summary reports the outcome of a process run. Processed plus Excluded
// always equals Loaded.
type Summary struct {
	Loaded    int
	Processed int
	Excluded  int
}

// Processor is the use case for the process stage. It normalizes raw
// records and derives the analytics columns. The reference time is
// fixed at construction, so the transform is a pure function of its
// input: the same raw sequence always yields the same output.
type Processor struct {
	store  ProcessedStore
	now    time.Time
	logger *slog.Logger
}

// NewProcessor creates a new Processor instance. Age and activity
// metrics are computed relative to now.
func NewProcessor(store ProcessedStore, now time.Time, logger *slog.Logger) *Processor {
	return &Processor{
		store:  store,
		now:    now.UTC(),
		logger: logger,
	}
}

// Run reads the raw data file, transforms it, and writes the processed
// data file.
func (p *Processor) Run(rawPath, processedPath string) (Summary, error) {
	raw, err := p.store.ReadRaw(rawPath)
	if err != nil {
		return Summary{}, err
	}

	processed, summary := p.Transform(raw)

	if err := p.store.WriteProcessed(processedPath, processed); err != nil {
		return Summary{}, err
	}

	p.logger.Info("process complete",
		"loaded", summary.Loaded,
		"processed", summary.Processed,
		"excluded", summary.Excluded,
		"path", processedPath,
	)

	return summary, nil
}

// Transform normalizes the raw records in order. Records failing shape
// validation are excluded and counted, never silently merged.
func (p *Processor) Transform(raw []domain.Repository) ([]domain.ProcessedRepository, Summary) {
	p.logger.Info("processing data", "count", len(raw))

	processed := make([]domain.ProcessedRepository, 0, len(raw))
	excluded := 0

	for _, r := range raw {
		rec, err := p.transformOne(r)
		if err != nil {
			p.logger.Warn("excluding record", "id", r.ID, "full_name", r.FullName, "reason", err)
			excluded++
			continue
		}
		processed = append(processed, rec)
	}

	normalizePopularity(processed)

	summary := Summary{
		Loaded:    len(raw),
		Processed: len(processed),
		Excluded:  excluded,
	}

	p.logger.Info("data processing complete")

	return processed, summary
}

func (p *Processor) transformOne(r domain.Repository) (domain.ProcessedRepository, error) {
	if r.ID == 0 {
		return domain.ProcessedRepository{}, ErrMissingID
	}
	if r.Stars < 0 {
		return domain.ProcessedRepository{}, ErrMissingStars
	}

	created, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return domain.ProcessedRepository{}, fmt.Errorf("%w: %q", ErrInvalidCreatedAt, r.CreatedAt)
	}
	pushed, err := time.Parse(time.RFC3339, r.PushedAt)
	if err != nil {
		return domain.ProcessedRepository{}, fmt.Errorf("%w: %q", ErrInvalidPushedAt, r.PushedAt)
	}

	language := r.Language
	languageKnown := language != ""
	if !languageKnown {
		language = domain.UnknownLanguage
	}

	forks := r.Forks
	if forks < 0 {
		forks = 0
	}

	ageDays := int(p.now.Sub(created).Hours() / 24)
	ageYears := float64(ageDays) / 365
	daysSincePush := int(p.now.Sub(pushed).Hours() / 24)

	// Repositories created less than a day before the reference time
	// would divide by zero in the per-year rates.
	years := ageYears
	if years <= 0 {
		years = 1.0 / 365
	}

	forkDivisor := forks
	if forkDivisor == 0 {
		forkDivisor = 1
	}

	return domain.ProcessedRepository{
		ID:            r.ID,
		FullName:      r.FullName,
		Owner:         r.Owner,
		Stars:         r.Stars,
		Forks:         forks,
		Language:      language,
		LanguageKnown: languageKnown,
		CreatedAt:     created.UTC(),
		PushedAt:      pushed.UTC(),
		License:       r.License,
		URL:           r.URL,

		AgeDays:           ageDays,
		AgeYears:          ageYears,
		DaysSinceLastPush: daysSincePush,
		IsActive:          daysSincePush <= 180,
		StarsPerYear:      float64(r.Stars) / years,
		ForksPerYear:      float64(forks) / years,
		PopularityScore:   r.Stars + 2*forks,
		EngagementRate:    float64(r.Stars+forks) / years,
		StarToForkRatio:   float64(r.Stars) / float64(forkDivisor),
		Category:          categorize(r.Stars),
	}, nil
}

// normalizePopularity min-max scales the popularity score to [0, 100]
// over the batch. When every score is equal they all map to 100.
func normalizePopularity(repos []domain.ProcessedRepository) {
	if len(repos) == 0 {
		return
	}

	scores := make(stats.Float64Data, len(repos))
	for i := range repos {
		scores[i] = float64(repos[i].PopularityScore)
	}

	minScore, _ := stats.Min(scores)
	maxScore, _ := stats.Max(scores)

	for i := range repos {
		if minScore == maxScore {
			repos[i].PopularityScoreNormalized = 100
			continue
		}
		repos[i].PopularityScoreNormalized = 100 * (scores[i] - minScore) / (maxScore - minScore)
	}
}

func categorize(stars int) string {
	switch {
	case stars <= 10000:
		return domain.CategoryLow
	case stars <= 50000:
		return domain.CategoryModerate
	default:
		return domain.CategoryHigh
	}
}
