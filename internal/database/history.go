package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nao1215/hncrawl/internal/model"
)

// RunRecord is a stored run with aggregate counts.
type RunRecord struct {
	ID          int64     `json:"id"`
	BaseURL     string    `json:"base_url"`
	OutputDir   string    `json:"output_dir"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
	Iterations  int       `json:"iterations"`
	Submissions int       `json:"submissions"`
	Resources   int       `json:"resources"`
}

// Finished reports whether the run recorded its end.
func (r RunRecord) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// CycleRecord is a stored cycle.
type CycleRecord struct {
	RunID int64 `json:"run_id"`
	model.CycleStats
}

// SubmissionRecord is a stored submission.
type SubmissionRecord struct {
	RunID int64 `json:"run_id"`
	model.Submission
	Dir    string    `json:"dir"`
	SeenAt time.Time `json:"seen_at"`
}

// ResourceRecord is a stored resource.
type ResourceRecord struct {
	RunID int64 `json:"run_id"`
	model.SavedResource
}

// Filter narrows history queries. Zero fields match everything.
type Filter struct {
	RunID        int64
	SubmissionID int64
}

// ListRuns returns runs, newest first.
func (a *ArchiveDB) ListRuns(ctx context.Context, filter Filter) ([]RunRecord, error) {
	query := `
	SELECT r.id, r.base_url, r.output_dir, r.started_at, r.finished_at, r.iterations,
		(SELECT COUNT(*) FROM submissions s WHERE s.run_id = r.id),
		(SELECT COUNT(*) FROM resources x WHERE x.run_id = r.id)
	FROM runs r
	WHERE 1=1
	`
	args := make([]any, 0)

	if filter.RunID != 0 {
		query += " AND r.id = ?"
		args = append(args, filter.RunID)
	}
	if filter.SubmissionID != 0 {
		query += " AND EXISTS (SELECT 1 FROM submissions s WHERE s.run_id = r.id AND s.id = ?)"
		args = append(args, filter.SubmissionID)
	}
	query += " ORDER BY r.id DESC"

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.BaseURL,
			&rec.OutputDir,
			&startedAt,
			&finishedAt,
			&rec.Iterations,
			&rec.Submissions,
			&rec.Resources,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			rec.FinishedAt = parseTimestamp(finishedAt.String)
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// ListCycles returns the cycles of a run in iteration order.
func (a *ArchiveDB) ListCycles(ctx context.Context, runID int64) ([]CycleRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
	SELECT run_id, iteration, index_ok, found, new_count, skipped, failed, started_at, finished_at
	FROM cycles
	WHERE run_id = ?
	ORDER BY iteration
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var results []CycleRecord
	for rows.Next() {
		var (
			rec                   CycleRecord
			indexOK               int
			startedAt, finishedAt string
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.Iteration,
			&indexOK,
			&rec.Found,
			&rec.New,
			&rec.Skipped,
			&rec.Failed,
			&startedAt,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		rec.IndexOK = indexOK != 0
		rec.StartedAt = parseTimestamp(startedAt)
		rec.FinishedAt = parseTimestamp(finishedAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// ListSubmissions returns submissions in the order they were seen.
func (a *ArchiveDB) ListSubmissions(ctx context.Context, filter Filter) ([]SubmissionRecord, error) {
	query := `SELECT run_id, id, title, href, dir, seen_at FROM submissions WHERE 1=1`
	args := make([]any, 0)

	if filter.RunID != 0 {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.SubmissionID != 0 {
		query += " AND id = ?"
		args = append(args, filter.SubmissionID)
	}
	query += " ORDER BY run_id, rowid"

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var results []SubmissionRecord
	for rows.Next() {
		var (
			rec    SubmissionRecord
			seenAt string
		)
		if err := rows.Scan(&rec.RunID, &rec.ID, &rec.Title, &rec.Href, &rec.Dir, &seenAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		rec.SeenAt = parseTimestamp(seenAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// ListResources returns saved resources in the order they were written.
func (a *ArchiveDB) ListResources(ctx context.Context, filter Filter) ([]ResourceRecord, error) {
	query := `
	SELECT run_id, submission_id, url, path, content_type, size, saved_at
	FROM resources
	WHERE 1=1
	`
	args := make([]any, 0)

	if filter.RunID != 0 {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.SubmissionID != 0 {
		query += " AND submission_id = ?"
		args = append(args, filter.SubmissionID)
	}
	query += " ORDER BY id"

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var results []ResourceRecord
	for rows.Next() {
		var (
			rec     ResourceRecord
			savedAt string
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.SubmissionID,
			&rec.URL,
			&rec.Path,
			&rec.ContentType,
			&rec.Size,
			&savedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		rec.SavedAt = parseTimestamp(savedAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}
