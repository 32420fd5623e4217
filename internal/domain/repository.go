// Package domain contains the core data structures for the pipeline.
package domain

import "time"

// UnknownLanguage marks repositories where GitHub reports no primary
// language. It only appears in processed output; the raw form keeps the
// field empty.
const UnknownLanguage = "Unknown"

// Popularity categories, bucketed by star count.
const (
	CategoryLow      = "Low Popularity"
	CategoryModerate = "Moderate Popularity"
	CategoryHigh     = "High Popularity"
)

// Repository is one row of raw search output, kept in its wire form.
// Timestamps stay as RFC3339 strings and the language field stays empty
// when absent; normalization happens during processing.
type Repository struct {
	ID        int64
	FullName  string
	Owner     string
	Stars     int
	Forks     int
	Language  string
	CreatedAt string
	PushedAt  string
	License   string
	URL       string
}

// ProcessedRepository is the canonical form consumed by the
// visualization layer, with timestamps parsed and derived metrics added.
type ProcessedRepository struct {
	ID            int64
	FullName      string
	Owner         string
	Stars         int
	Forks         int
	Language      string
	LanguageKnown bool
	CreatedAt     time.Time
	PushedAt      time.Time
	License       string
	URL           string

	AgeDays                   int
	AgeYears                  float64
	DaysSinceLastPush         int
	IsActive                  bool
	StarsPerYear              float64
	ForksPerYear              float64
	PopularityScore           int
	PopularityScoreNormalized float64
	EngagementRate            float64
	StarToForkRatio           float64
	Category                  string
}
