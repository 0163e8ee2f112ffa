// Package sqlite implements [store.Store] on an embedded SQLite database via
// the pure-Go modernc.org/sqlite driver. It is the default backend: a single
// file, no external services.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/store"
)

var _ store.Store = (*Store)(nil)

const defaultListLimit = 50

const createReportsTableSQL = `
CREATE TABLE IF NOT EXISTS reports (
	job_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	overall_score INTEGER NOT NULL,
	created_at_utc TEXT NOT NULL,
	document TEXT NOT NULL
)`

const createReportsIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at_utc)`

// Store is the SQLite report store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database file at path and ensures the schema
// exists.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %q: %w", path, err)
	}

	// modernc sqlite serializes writes; a single connection avoids SQLITE_BUSY
	// under concurrent workers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{createReportsTableSQL, createReportsIndexSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite store: migrate: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// SaveReport implements [store.Store].
func (s *Store) SaveReport(ctx context.Context, report *analysis.Report) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("sqlite store: marshal report %q: %w", report.JobID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (job_id, status, overall_score, created_at_utc, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			overall_score = excluded.overall_score,
			document = excluded.document`,
		report.JobID, report.Status, report.OverallScore.Score,
		time.Now().UTC().Format(time.RFC3339), string(doc))
	if err != nil {
		return fmt.Errorf("sqlite store: save report %q: %w", report.JobID, err)
	}
	return nil
}

// GetReport implements [store.Store].
func (s *Store) GetReport(ctx context.Context, jobID string) (*analysis.Report, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM reports WHERE job_id = ?`, jobID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: get report %q: %w", jobID, err)
	}

	var report analysis.Report
	if err := json.Unmarshal([]byte(doc), &report); err != nil {
		return nil, fmt.Errorf("sqlite store: unmarshal report %q: %w", jobID, err)
	}
	return &report, nil
}

// DeleteReport implements [store.Store].
func (s *Store) DeleteReport(ctx context.Context, jobID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM reports WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("sqlite store: delete report %q: %w", jobID, err)
	}
	return nil
}

// ListReports implements [store.Store].
func (s *Store) ListReports(ctx context.Context, limit int) ([]store.JobSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, status, overall_score, created_at_utc
		FROM reports ORDER BY created_at_utc DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list reports: %w", err)
	}
	defer rows.Close()

	summaries := []store.JobSummary{}
	for rows.Next() {
		var (
			s2        store.JobSummary
			createdAt string
		)
		if err := rows.Scan(&s2.JobID, &s2.Status, &s2.OverallScore, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite store: scan report row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			s2.CreatedAt = t
		}
		summaries = append(summaries, s2)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite store: list reports: %w", err)
	}
	return summaries, nil
}

// Close implements [store.Store].
func (s *Store) Close() error {
	return s.db.Close()
}
