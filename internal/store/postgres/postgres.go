// Package postgres implements [store.Store] on PostgreSQL via pgxpool.
// Reports are kept as JSONB documents keyed by job id.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/store"
)

var _ store.Store = (*Store)(nil)

const defaultListLimit = 50

// Store is the PostgreSQL report store. All operations are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// New establishes a connection pool to the database at dsn and runs
// [Migrate] to ensure the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the reports table and its index if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			job_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			overall_score INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			document JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// SaveReport implements [store.Store].
func (s *Store) SaveReport(ctx context.Context, report *analysis.Report) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("postgres store: marshal report %q: %w", report.JobID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO reports (job_id, status, overall_score, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			overall_score = EXCLUDED.overall_score,
			document = EXCLUDED.document`,
		report.JobID, report.Status, report.OverallScore.Score, doc)
	if err != nil {
		return fmt.Errorf("postgres store: save report %q: %w", report.JobID, err)
	}
	return nil
}

// GetReport implements [store.Store].
func (s *Store) GetReport(ctx context.Context, jobID string) (*analysis.Report, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM reports WHERE job_id = $1`, jobID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get report %q: %w", jobID, err)
	}

	var report analysis.Report
	if err := json.Unmarshal(doc, &report); err != nil {
		return nil, fmt.Errorf("postgres store: unmarshal report %q: %w", jobID, err)
	}
	return &report, nil
}

// DeleteReport implements [store.Store].
func (s *Store) DeleteReport(ctx context.Context, jobID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM reports WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("postgres store: delete report %q: %w", jobID, err)
	}
	return nil
}

// ListReports implements [store.Store].
func (s *Store) ListReports(ctx context.Context, limit int) ([]store.JobSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT job_id, status, overall_score, created_at
		FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list reports: %w", err)
	}
	defer rows.Close()

	summaries := []store.JobSummary{}
	for rows.Next() {
		var (
			s2        store.JobSummary
			createdAt time.Time
		)
		if err := rows.Scan(&s2.JobID, &s2.Status, &s2.OverallScore, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres store: scan report row: %w", err)
		}
		s2.CreatedAt = createdAt
		summaries = append(summaries, s2)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: list reports: %w", err)
	}
	return summaries, nil
}

// Close implements [store.Store].
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
