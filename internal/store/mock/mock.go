// Package mock provides an in-memory [store.Store] for tests.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/store"
)

var _ store.Store = (*Store)(nil)

type record struct {
	report    analysis.Report
	createdAt time.Time
}

// Store keeps reports in a mutex-guarded map. The zero value is not usable;
// call [New].
type Store struct {
	mu      sync.Mutex
	reports map[string]record

	// Err, when set, is returned by every operation.
	Err error
}

func New() *Store {
	return &Store{reports: make(map[string]record)}
}

func (s *Store) SaveReport(_ context.Context, report *analysis.Report) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.reports[report.JobID]
	if !ok {
		rec.createdAt = time.Now()
	}
	rec.report = *report
	s.reports[report.JobID] = rec
	return nil
}

func (s *Store) GetReport(_ context.Context, jobID string) (*analysis.Report, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.reports[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, jobID)
	}
	report := rec.report
	return &report, nil
}

func (s *Store) DeleteReport(_ context.Context, jobID string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, jobID)
	return nil
}

func (s *Store) ListReports(_ context.Context, limit int) ([]store.JobSummary, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := []store.JobSummary{}
	for id, rec := range s.reports {
		summaries = append(summaries, store.JobSummary{
			JobID:        id,
			Status:       rec.report.Status,
			OverallScore: rec.report.OverallScore.Score,
			CreatedAt:    rec.createdAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *Store) Close() error { return nil }
