// Package store defines report persistence for analysis jobs.
//
// A Store holds one JSON report document per job id plus a small summary row
// for listings. Implementations live in the sqlite and postgres subpackages;
// mock provides an in-memory store for tests.
//
// Every implementation must be safe for concurrent use.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/orato-ai/orato/internal/analysis"
)

// ErrNotFound is returned when no report exists for the requested job id.
var ErrNotFound = errors.New("store: report not found")

// JobSummary is one row of a report listing.
type JobSummary struct {
	JobID        string    `json:"job_id"`
	Status       string    `json:"status"`
	OverallScore int       `json:"overall_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists finished analysis reports keyed by job id.
type Store interface {
	// SaveReport upserts the report under its job id.
	SaveReport(ctx context.Context, report *analysis.Report) error

	// GetReport retrieves a report by job id.
	// Returns [ErrNotFound] when no report exists.
	GetReport(ctx context.Context, jobID string) (*analysis.Report, error)

	// DeleteReport removes a report. Deleting a missing report is not an
	// error.
	DeleteReport(ctx context.Context, jobID string) error

	// ListReports returns summaries of the most recent reports, newest
	// first. limit <= 0 applies an implementation default.
	ListReports(ctx context.Context, limit int) ([]JobSummary, error)

	// Close releases the underlying database resources.
	Close() error
}
